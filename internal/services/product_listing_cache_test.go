package services_test

import (
	"context"
	"testing"
	"time"

	"bookheaven/internal/cache"
	"bookheaven/internal/models"
	"bookheaven/internal/repositories"
	"bookheaven/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// interleavedRepository runs duringFind once, after the store has been read
// and before the result reaches the caller.
type interleavedRepository struct {
	repositories.ProductRepository
	duringFind func()
}

func (r *interleavedRepository) Find(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	products, total, err := r.ProductRepository.Find(ctx, q)
	if hook := r.duringFind; hook != nil {
		r.duringFind = nil
		hook()
	}
	return products, total, err
}

func TestProductService_DeleteDuringListingIsNotCached(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(ctx, cache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	brands := repositories.NewMemoryBrandRepository()
	categories := repositories.NewMemoryCategoryRepository()
	brand := models.Brand{Name: "Ace Books"}
	category := models.Category{Name: "Science Fiction"}
	require.NoError(t, brands.Create(ctx, &brand))
	require.NoError(t, categories.Create(ctx, &category))

	repo := &interleavedRepository{ProductRepository: repositories.NewMemoryProductRepository(brands, categories)}
	service := services.NewProductService(repo, nil, cache.NewListingCache(client, time.Minute), zap.NewNop())

	created, err := service.CreateProduct(ctx, services.CreateProductInput{
		Title:      "Dune",
		Price:      ptr(9.99),
		Brand:      brand.ID,
		Category:   category.ID,
		CoverImage: "/images/dune.jpg",
	})
	require.NoError(t, err)

	repo.duringFind = func() {
		_, err := service.DeleteProduct(ctx, created.ID)
		require.NoError(t, err)
	}
	first, err := service.ListProducts(ctx, services.ListParams{User: true})
	require.NoError(t, err)
	assert.Len(t, first.Products, 1, "the in-flight listing was read before the delete")

	second, err := service.ListProducts(ctx, services.ListParams{User: true})
	require.NoError(t, err)
	assert.Empty(t, second.Products)
	assert.Zero(t, second.Total)
}
