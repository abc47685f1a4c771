package models

import "errors"

// Sentinel errors shared by services and handlers. Handlers match them with
// errors.Is to pick an HTTP status; services wrap them with context via %w.
var (
	ErrDuplicateCredential = errors.New("username or email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrMalformedSpecs      = errors.New("malformed product specs")
	ErrInvalidToken        = errors.New("invalid token")
)
