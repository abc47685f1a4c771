package models

import "time"

// Review links a user, a product, a rating and free text. Reviews are
// append-only: created via the submission endpoint and never edited.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"index;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"index;type:varchar(36)" validate:"required"`
	Rating    int       `json:"rating" validate:"required,gte=1,lte=5"`
	Text      string    `json:"text" gorm:"type:text" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}
