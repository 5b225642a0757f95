package repositories

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"

	"github.com/google/uuid"
)

type memoryProduct struct {
	product models.Product
	seq     uint64
}

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Brands and categories are joined from the given repositories.
type MemoryProductRepository struct {
	products   map[string]memoryProduct
	nextSeq    uint64
	brands     BrandRepository
	categories CategoryRepository
	mu         sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository(brands BrandRepository, categories CategoryRepository) *MemoryProductRepository {
	return &MemoryProductRepository{
		products:   make(map[string]memoryProduct),
		brands:     brands,
		categories: categories,
	}
}

// Find filters, orders and pages the stored products. Without a sort the
// products keep insertion order.
func (r *MemoryProductRepository) Find(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	matched := make([]memoryProduct, 0, len(r.products))
	for _, p := range r.products {
		if q.Matches(&p.product) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	field, sorted := sortField(q)
	slices.SortStableFunc(matched, func(a, b memoryProduct) int {
		if sorted {
			c := compareProducts(&a.product, &b.product, field.Document)
			if q.Sort.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
			return cmp.Compare(a.product.ID, b.product.ID)
		}
		return cmp.Compare(a.seq, b.seq)
	})

	total := int64(len(matched))
	if q.Pagination != nil {
		skip := min(q.Pagination.Skip(), len(matched))
		end := min(skip+q.Pagination.Limit, len(matched))
		matched = matched[skip:end]
	}

	products := make([]models.Product, 0, len(matched))
	for _, p := range matched {
		joined, err := r.join(ctx, p.product)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, joined)
	}
	return products, total, nil
}

func compareProducts(a, b *models.Product, field string) int {
	switch field {
	case "title":
		return cmp.Compare(a.Title, b.Title)
	case "price":
		return cmp.Compare(a.Price, b.Price)
	case "stockQuantity":
		return cmp.Compare(a.StockQuantity, b.StockQuantity)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	}
	return 0
}

// join resolves the brand and category references. A dangling reference
// leaves the field nil, as a populate on a missing document would.
func (r *MemoryProductRepository) join(ctx context.Context, p models.Product) (models.Product, error) {
	brand, err := r.brands.GetByID(ctx, p.BrandID)
	if err != nil && !apperrors.IsNotFound(err) {
		return p, err
	}
	category, err := r.categories.GetByID(ctx, p.CategoryID)
	if err != nil && !apperrors.IsNotFound(err) {
		return p, err
	}
	p.Brand = brand
	p.Category = category
	return p, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	p, ok := r.products[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	joined, err := r.join(ctx, p.product)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	stored := *product
	stored.Brand, stored.Category = nil, nil
	r.nextSeq++
	r.products[product.ID] = memoryProduct{product: stored, seq: r.nextSeq}
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	p, ok := r.products[id]
	if !ok {
		r.mu.Unlock()
		return nil, apperrors.NotFound("product", id)
	}
	patch.Apply(&p.product)
	p.product.UpdatedAt = time.Now()
	r.products[id] = p
	r.mu.Unlock()

	joined, err := r.join(ctx, p.product)
	if err != nil {
		return nil, err
	}
	return &joined, nil
}
