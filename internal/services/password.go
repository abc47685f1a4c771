package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces and verifies one-way password digests.
type PasswordHasher interface {
	// Hash derives a digest from a plaintext password.
	Hash(plaintext string) (string, error)

	// Verify reports whether the plaintext matches a previously stored digest.
	Verify(plaintext, digest string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt. Every digest carries
// its own random salt, so hashing the same plaintext twice yields different
// digests while Verify still matches both.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher with the default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash derives a salted bcrypt digest from the plaintext password.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the stored digest.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
