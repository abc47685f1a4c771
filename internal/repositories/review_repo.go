package repositories

import "lavka/internal/models"

// ReviewRepository defines the interface for review data access.
// Reviews are append-only; there is no update or delete.
type ReviewRepository interface {
	Create(review *models.Review) error
	ListByProduct(productID string) ([]models.Review, error)
}
