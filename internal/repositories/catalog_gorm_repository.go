package repositories

import (
	"context"
	"errors"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBrandRepository is a GORM implementation of BrandRepository.
type GORMBrandRepository struct {
	db *gorm.DB
}

// NewGORMBrandRepository creates a new instance of GORMBrandRepository.
func NewGORMBrandRepository(db *gorm.DB) *GORMBrandRepository {
	return &GORMBrandRepository{db: db}
}

// GetAll returns every brand ordered by name.
func (r *GORMBrandRepository) GetAll(ctx context.Context) ([]models.Brand, error) {
	brands := []models.Brand{}
	if err := r.db.WithContext(ctx).Order("name").Find(&brands).Error; err != nil {
		return nil, apperrors.Query("get all brands", err)
	}
	return brands, nil
}

// GetByID returns a brand by its ID.
func (r *GORMBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("brand", id)
		}
		return nil, apperrors.Query("get brand by ID "+id, err)
	}
	return &brand, nil
}

// Create inserts a new brand and sets its ID.
func (r *GORMBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	return apperrors.Query("create brand", r.db.WithContext(ctx).Create(brand).Error)
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// GetAll returns every category ordered by name.
func (r *GORMCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, apperrors.Query("get all categories", err)
	}
	return categories, nil
}

// GetByID returns a category by its ID.
func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, apperrors.Query("get category by ID "+id, err)
	}
	return &category, nil
}

// Create inserts a new category and sets its ID.
func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	return apperrors.Query("create category", r.db.WithContext(ctx).Create(category).Error)
}
