package repositories

import (
	"context"

	"bookheaven/internal/models"
)

// BrandRepository defines the interface for brand data access.
type BrandRepository interface {
	GetAll(ctx context.Context) ([]models.Brand, error)
	GetByID(ctx context.Context, id string) (*models.Brand, error)
	Create(ctx context.Context, brand *models.Brand) error
}

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
}
