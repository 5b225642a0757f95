package services

import (
	"context"
	"strings"

	"bookheaven/internal/models"
	"bookheaven/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// NamedInput is the body used to create a brand or a category.
type NamedInput struct {
	Name string `json:"name" validate:"required"`
}

// BrandService handles business logic related to brands.
type BrandService struct {
	repo     repositories.BrandRepository
	validate *validator.Validate
}

// NewBrandService creates a new BrandService.
func NewBrandService(repo repositories.BrandRepository) *BrandService {
	return &BrandService{repo: repo, validate: newValidator()}
}

// GetAllBrands returns every brand ordered by name.
func (s *BrandService) GetAllBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.GetAll(ctx)
}

// GetBrandByID retrieves a single brand by its ID.
func (s *BrandService) GetBrandByID(ctx context.Context, id string) (*models.Brand, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateBrand validates the trimmed name and stores a new brand.
func (s *BrandService) CreateBrand(ctx context.Context, input NamedInput) (*models.Brand, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}
	brand := &models.Brand{Name: input.Name}
	if err := s.repo.Create(ctx, brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo     repositories.CategoryRepository
	validate *validator.Validate
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo, validate: newValidator()}
}

// GetAllCategories returns every category ordered by name.
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.GetAll(ctx)
}

// GetCategoryByID retrieves a single category by its ID.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateCategory validates the trimmed name and stores a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, input NamedInput) (*models.Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}
	category := &models.Category{Name: input.Name}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
