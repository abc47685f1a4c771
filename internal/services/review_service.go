package services

import (
	"encoding/json"
	"fmt"
	"log"

	"lavka/internal/models"
	"lavka/internal/repositories"
)

// ProductReview is a review joined with its author's display name, as served
// by the product review listing.
type ProductReview struct {
	models.Review
	UserName string
}

// ReviewService handles submission and listing of product reviews.
type ReviewService struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	events      EventPublisher
}

// NewReviewService creates a new ReviewService. events may be nil.
func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository, events EventPublisher) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		events:      events,
	}
}

// CreateReview validates and persists a review, returning its ID. The author
// always comes from the authenticated identity; there is no anonymous path.
// Nothing is persisted when validation fails.
func (s *ReviewService) CreateReview(userID, productID string, rating int, text string) (string, error) {
	if rating < 1 || rating > 5 {
		return "", fmt.Errorf("rating %d: %w", rating, models.ErrInvalidRating)
	}
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return "", err
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Text:      text,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return "", err
	}

	if s.events != nil {
		body, err := json.Marshal(map[string]interface{}{
			"review_id":  review.ID,
			"product_id": productID,
			"rating":     rating,
		})
		if err == nil {
			if err := s.events.Publish("review.created", body); err != nil {
				log.Printf("Warning: failed to publish review.created event for review %s: %v", review.ID, err)
			}
		}
	}

	return review.ID, nil
}

// ListProductReviews returns the reviews for a product, newest first, with
// author usernames resolved. An author that cannot be resolved leaves the
// name empty rather than failing the listing.
func (s *ReviewService) ListProductReviews(productID string) ([]ProductReview, error) {
	reviews, err := s.reviewRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	result := make([]ProductReview, 0, len(reviews))
	for _, review := range reviews {
		name, ok := names[review.UserID]
		if !ok {
			if user, err := s.userRepo.GetByID(review.UserID); err == nil {
				name = user.Username
			} else {
				log.Printf("Failed to resolve author %s for review %s: %v", review.UserID, review.ID, err)
			}
			names[review.UserID] = name
		}
		result = append(result, ProductReview{Review: review, UserName: name})
	}
	return result, nil
}
