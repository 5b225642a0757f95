package services

import (
	"context"
	"strings"
	"time"

	"bookheaven/internal/models"
	"bookheaven/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EventPublisher delivers product lifecycle events to other services.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ListingCache stores listing pages keyed by their normalized query and the
// listing version. Get returns a nil page on a miss, plus the key a freshly
// loaded page must be stored under; an empty key means do not store.
type ListingCache interface {
	Get(ctx context.Context, q models.ProductQuery) (*models.ProductPage, string, error)
	Set(ctx context.Context, key string, page *models.ProductPage) error
	Invalidate(ctx context.Context) error
}

// CreateProductInput is the body of a product creation request.
type CreateProductInput struct {
	Title         string   `json:"title" validate:"required"`
	Summary       string   `json:"summary"`
	Price         *float64 `json:"price" validate:"required,gte=0"`
	Brand         string   `json:"brand" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	StockQuantity *int     `json:"stockQuantity" validate:"omitnil,gte=0"`
	CoverImage    string   `json:"coverImage" validate:"required"`
}

// UpdateProductInput is a partial product update. Absent fields are kept.
type UpdateProductInput struct {
	Title         *string  `json:"title" validate:"omitnil,min=1"`
	Summary       *string  `json:"summary"`
	Price         *float64 `json:"price" validate:"omitnil,gte=0"`
	Brand         *string  `json:"brand" validate:"omitnil,min=1"`
	Category      *string  `json:"category" validate:"omitnil,min=1"`
	StockQuantity *int     `json:"stockQuantity" validate:"omitnil,gte=0"`
	CoverImage    *string  `json:"coverImage" validate:"omitnil,min=1"`
	IsDeleted     *bool    `json:"isDeleted"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
	cache     ListingCache
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. publisher and cache may be
// nil, which disables events and listing caching respectively.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher, cache ListingCache, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		validate:  newValidator(),
		logger:    logger,
	}
}

// NormalizeCoverImage roots an image path at "/". Paths already starting with
// "/" are kept; others get backslashes turned into slashes and a leading "/".
func NormalizeCoverImage(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + strings.ReplaceAll(path, `\`, "/")
}

// ListProducts returns the page of products described by params along with
// the total number of matches.
func (s *ProductService) ListProducts(ctx context.Context, params ListParams) (*models.ProductPage, error) {
	q, err := NormalizeListParams(params)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if s.cache != nil {
		page, key, err := s.cache.Get(ctx, q)
		cacheKey = key
		if err != nil {
			s.logger.Warn("listing cache read failed", zap.Error(err))
		} else if page != nil {
			return page, nil
		}
	}

	products, total, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	page := &models.ProductPage{Products: products, Total: total}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, page); err != nil {
			s.logger.Warn("listing cache write failed", zap.Error(err))
		}
	}
	return page, nil
}

// GetProductByID retrieves a single product by its ID, including soft-deleted ones.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates the input, normalizes the cover image path and
// stores a new, non-deleted product.
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Summary = strings.TrimSpace(input.Summary)
	input.Brand = strings.TrimSpace(input.Brand)
	input.Category = strings.TrimSpace(input.Category)
	input.CoverImage = strings.TrimSpace(input.CoverImage)
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:      input.Title,
		Summary:    input.Summary,
		Price:      *input.Price,
		BrandID:    input.Brand,
		CategoryID: input.Category,
		CoverImage: NormalizeCoverImage(input.CoverImage),
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	created, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, models.ProductCreated, created)
	return created, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*models.Product, error) {
	input.Title = trimmed(input.Title)
	input.Summary = trimmed(input.Summary)
	input.Brand = trimmed(input.Brand)
	input.Category = trimmed(input.Category)
	input.CoverImage = trimmed(input.CoverImage)
	if err := validate(s.validate, input); err != nil {
		return nil, err
	}

	patch := models.ProductPatch{
		Title:         input.Title,
		Summary:       input.Summary,
		Price:         input.Price,
		BrandID:       input.Brand,
		CategoryID:    input.Category,
		StockQuantity: input.StockQuantity,
		IsDeleted:     input.IsDeleted,
	}
	if input.CoverImage != nil {
		cover := NormalizeCoverImage(*input.CoverImage)
		patch.CoverImage = &cover
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.ProductUpdated, updated)
	return updated, nil
}

// DeleteProduct soft-deletes a product by flagging it as deleted.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.setDeleted(ctx, id, true, models.ProductDeleted)
}

// RestoreProduct clears the deleted flag of a product.
func (s *ProductService) RestoreProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.setDeleted(ctx, id, false, models.ProductRestored)
}

func (s *ProductService) setDeleted(ctx context.Context, id string, deleted bool, eventType string) (*models.Product, error) {
	product, err := s.repo.Update(ctx, id, models.ProductPatch{IsDeleted: &deleted})
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, eventType, product)
	return product, nil
}

// afterMutation drops cached listings and announces the change. Neither step
// fails the mutation.
func (s *ProductService) afterMutation(ctx context.Context, eventType string, product *models.Product) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("listing cache invalidation failed", zap.String("product_id", product.ID), zap.Error(err))
		}
	}

	if s.publisher == nil {
		s.logger.Debug("event publisher not configured, skipping product event", zap.String("type", eventType))
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  product.ID,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishProductEvent(event); err != nil {
		s.logger.Warn("failed to publish product event",
			zap.String("type", eventType),
			zap.String("product_id", product.ID),
			zap.Error(err),
		)
	}
}
