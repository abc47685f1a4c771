package models

import "time"

// User represents a registered account of the store.
// Accounts are only ever created through registration; there is no update or
// delete path, so the model carries a bare CreatedAt instead of gorm.Model.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:varchar(255)"`
	FullName     string    `json:"full_name" gorm:"type:varchar(255)" validate:"required"`
	Phone        string    `json:"phone" gorm:"type:varchar(32)" validate:"required"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the diagnostic projection returned by the user listing
// endpoint. It deliberately excludes the password hash and contact details.
type UserSummary struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
