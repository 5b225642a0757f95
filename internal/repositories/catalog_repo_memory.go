package repositories

import (
	"context"
	"sort"
	"sync"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"

	"github.com/google/uuid"
)

// MemoryBrandRepository is an in-memory implementation of BrandRepository.
type MemoryBrandRepository struct {
	brands map[string]models.Brand
	mu     sync.RWMutex
}

// NewMemoryBrandRepository creates a new instance of MemoryBrandRepository.
func NewMemoryBrandRepository() *MemoryBrandRepository {
	return &MemoryBrandRepository{brands: make(map[string]models.Brand)}
}

// GetAll returns every brand ordered by name.
func (r *MemoryBrandRepository) GetAll(ctx context.Context) ([]models.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brands := make([]models.Brand, 0, len(r.brands))
	for _, b := range r.brands {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i].Name < brands[j].Name })
	return brands, nil
}

// GetByID returns a brand by its ID.
func (r *MemoryBrandRepository) GetByID(ctx context.Context, id string) (*models.Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.brands[id]
	if !ok {
		return nil, apperrors.NotFound("brand", id)
	}
	return &b, nil
}

// Create stores a brand, assigning an ID when it has none.
func (r *MemoryBrandRepository) Create(ctx context.Context, brand *models.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	r.brands[brand.ID] = *brand
	return nil
}

// MemoryCategoryRepository is an in-memory implementation of CategoryRepository.
type MemoryCategoryRepository struct {
	categories map[string]models.Category
	mu         sync.RWMutex
}

// NewMemoryCategoryRepository creates a new instance of MemoryCategoryRepository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{categories: make(map[string]models.Category)}
}

// GetAll returns every category ordered by name.
func (r *MemoryCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// GetByID returns a category by its ID.
func (r *MemoryCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, apperrors.NotFound("category", id)
	}
	return &c, nil
}

// Create stores a category, assigning an ID when it has none.
func (r *MemoryCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	r.categories[category.ID] = *category
	return nil
}
