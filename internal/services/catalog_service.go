package services

import (
	"lavka/internal/models"
	"lavka/internal/repositories"
)

// CategoryAll is the sentinel filter value meaning "no category filter".
const CategoryAll = "all"

// CatalogService handles read access to the product catalog.
type CatalogService struct {
	repo repositories.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListProducts retrieves products, optionally filtered by category. An empty
// filter or the "all" sentinel returns the whole catalog. Specs blobs are
// decoded on the way out; a corrupt blob fails the whole read with
// ErrMalformedSpecs instead of being papered over with an empty map.
func (s *CatalogService) ListProducts(category string) ([]models.Product, error) {
	if category == CategoryAll {
		category = ""
	}
	products, err := s.repo.GetAll(category)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if err := products[i].DecodeSpecs(); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// GetProduct retrieves a single product by its ID with its specs decoded.
func (s *CatalogService) GetProduct(id string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := product.DecodeSpecs(); err != nil {
		return nil, err
	}
	return product, nil
}
