package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errUnknownReference = &apperrors.ValidationError{
	Message: "Unknown brand or category",
	Fields:  map[string]string{"brand": "must reference an existing brand", "category": "must reference an existing category"},
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB

	mu          sync.Mutex
	lastCreated time.Time
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) filtered(ctx context.Context, q models.ProductQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Product{})
	if len(q.Brands) > 0 {
		tx = tx.Where("brand_id IN ?", q.Brands)
	}
	if len(q.Categories) > 0 {
		tx = tx.Where("category_id IN ?", q.Categories)
	}
	if q.ActiveOnly {
		tx = tx.Where("is_deleted = ?", false)
	}
	return tx
}

// Find runs a count and a page query with the same filter.
func (r *GORMProductRepository) Find(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, apperrors.Query("count products", err)
	}

	tx := r.filtered(ctx, q).Preload("Brand").Preload("Category")
	if field, ok := sortField(q); ok {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: field.Column}, Desc: q.Sort.Desc})
	} else {
		// Insertion order. Rows created by other processes within the same
		// microsecond fall back to id order.
		tx = tx.Order("created_at")
	}
	tx = tx.Order("id")
	if q.Pagination != nil {
		tx = tx.Offset(q.Pagination.Skip()).Limit(q.Pagination.Limit)
	}

	products := []models.Product{}
	if err := tx.Find(&products).Error; err != nil {
		return nil, 0, apperrors.Query("find products", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID, deleted or not.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Brand").Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, apperrors.Query("get product by ID "+id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = r.nextCreatedAt()
		product.UpdatedAt = product.CreatedAt
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return errUnknownReference
		}
		return apperrors.Query("create product", err)
	}
	return nil
}

// Update writes the patched columns in a single UPDATE statement.
func (r *GORMProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(productColumns(patch))
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return nil, errUnknownReference
		}
		return nil, apperrors.Query("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound("product", id)
	}
	return r.GetByID(ctx, id)
}

// nextCreatedAt returns a creation time strictly after the previous one,
// at the microsecond precision postgres keeps, so unsorted listings follow
// insertion order instead of falling back to the random id.
func (r *GORMProductRepository) nextCreatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(r.lastCreated) {
		now = r.lastCreated.Add(time.Microsecond)
	}
	r.lastCreated = now
	return now
}

func productColumns(p models.ProductPatch) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": time.Now()}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Summary != nil {
		cols["summary"] = *p.Summary
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.BrandID != nil {
		cols["brand_id"] = *p.BrandID
	}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	if p.StockQuantity != nil {
		cols["stock_quantity"] = *p.StockQuantity
	}
	if p.CoverImage != nil {
		cols["cover_image"] = *p.CoverImage
	}
	if p.IsDeleted != nil {
		cols["is_deleted"] = *p.IsDeleted
	}
	return cols
}

func sortField(q models.ProductQuery) (models.SortField, bool) {
	if q.Sort == nil {
		return models.SortField{}, false
	}
	field, ok := models.SortableFields[q.Sort.Field]
	return field, ok
}
