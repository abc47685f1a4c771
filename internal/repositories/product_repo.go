package repositories

import (
	"lavka/internal/models"
)

// ProductRepository defines the interface for product data access.
// The catalog is read-only through the API; Create exists for seeding.
type ProductRepository interface {
	GetAll(category string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Count() (int64, error)
}
