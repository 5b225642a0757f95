package repositories

import (
	"context"

	"bookheaven/internal/models"
)

// ProductRepository defines the interface for product data access. Every
// product it returns has Brand and Category joined.
type ProductRepository interface {
	// Find returns one page of products matching q and the total number of
	// matches ignoring pagination.
	Find(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update applies patch to the product with the given id and returns the
	// stored result. Unknown ids fail with a NotFoundError and write nothing.
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
}
