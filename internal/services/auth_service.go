package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"lavka/internal/models"
	"lavka/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// AuthService handles registration, login and session token issuance.
type AuthService struct {
	userRepo  repositories.UserRepository
	hasher    PasswordHasher
	jwtSecret []byte
	tokenTTL  time.Duration
	events    EventPublisher
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(userRepo repositories.UserRepository, hasher PasswordHasher, jwtSecret string, tokenTTL time.Duration, events EventPublisher) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		events:    events,
	}
}

// RegisterUser hashes the password and creates the account, returning the new
// user ID. The username/email pre-checks are only a fast path for a friendly
// failure; the database unique constraints remain the authority, so two
// concurrent registrations of the same name still end with exactly one
// success and one ErrDuplicateCredential.
func (s *AuthService) RegisterUser(username, email, password, fullName, phone string) (string, error) {
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return "", fmt.Errorf("username %s: %w", username, models.ErrDuplicateCredential)
	}
	if existing, err := s.userRepo.GetByEmail(email); err == nil && existing != nil {
		return "", fmt.Errorf("email %s: %w", email, models.ErrDuplicateCredential)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		FullName:     fullName,
		Phone:        phone,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, models.ErrDuplicateCredential) {
			return "", err
		}
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	s.publishEvent("user.registered", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
	})

	return user.ID, nil
}

// LoginUser verifies the credentials and returns a signed session token plus
// the account. Unknown username and wrong password both come back as
// ErrInvalidCredentials so callers cannot probe for account existence.
func (s *AuthService) LoginUser(username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", nil, models.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, models.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueToken mints an HS256 bearer token bound to the user, expiring a fixed
// TTL after issuance.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a session token, returning its claims.
// Expired, malformed and badly-signed tokens all map to the same
// ErrInvalidToken; callers cannot tell them apart.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, models.ErrInvalidToken
}

// ListUsers returns the diagnostic projection of every account.
func (s *AuthService) ListUsers() ([]models.UserSummary, error) {
	return s.userRepo.ListBasic()
}

func (s *AuthService) publishEvent(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.events.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
