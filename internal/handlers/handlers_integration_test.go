package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookheaven/internal/handlers"
	"bookheaven/internal/middleware"
	"bookheaven/internal/models"
	"bookheaven/internal/repositories"
	"bookheaven/internal/services"
	"bookheaven/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	app        *fiber.App
	products   repositories.ProductRepository
	brand      models.Brand
	otherBrand models.Brand
	category   models.Category
}

// setupApp wires every handler against a private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenGORM("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err, "failed to open in-memory database")

	productRepo := repositories.NewGORMProductRepository(db)
	brandRepo := repositories.NewGORMBrandRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)

	logger := zap.NewNop()
	productService := services.NewProductService(productRepo, nil, nil, logger)
	brandService := services.NewBrandService(brandRepo)
	categoryService := services.NewCategoryService(categoryRepo)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(productService, logger).RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(brandService, categoryService).RegisterRoutes(apiV1)

	env := &testEnv{
		app:        app,
		products:   productRepo,
		brand:      models.Brand{Name: "Ace Books"},
		otherBrand: models.Brand{Name: "Gollancz"},
		category:   models.Category{Name: "Science Fiction"},
	}
	ctx := context.Background()
	require.NoError(t, brandRepo.Create(ctx, &env.brand))
	require.NoError(t, brandRepo.Create(ctx, &env.otherBrand))
	require.NoError(t, categoryRepo.Create(ctx, &env.category))
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (e *testEnv) seed(t *testing.T, title string, brand models.Brand, deleted bool) models.Product {
	t.Helper()
	p := models.Product{
		Title:      title,
		Price:      9.99,
		BrandID:    brand.ID,
		CategoryID: e.category.ID,
		CoverImage: "/images/placeholder.jpg",
		IsDeleted:  deleted,
	}
	require.NoError(t, e.products.Create(context.Background(), &p))
	return p
}

func TestCreateProductNormalizesCoverImage(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":      "Dune",
		"price":      9.99,
		"brand":      env.brand.ID,
		"category":   env.category.ID,
		"coverImage": `images\dune.jpg`,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[models.Product](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "/images/dune.jpg", created.CoverImage)
	assert.False(t, created.IsDeleted)
	assert.Zero(t, created.StockQuantity)
	require.NotNil(t, created.Brand)
	assert.Equal(t, "Ace Books", created.Brand.Name)
	require.NotNil(t, created.Category)
	assert.Equal(t, "Science Fiction", created.Category.Name)

	resp = env.do(t, http.MethodGet, "/api/v1/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dune", decode[models.Product](t, resp).Title)
}

func TestCreateProductMissingFields(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title": "Dune",
		"brand": env.brand.ID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "Missing required fields", body["message"])
	fields, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "coverImage")
	assert.NotContains(t, fields, "title")
}

func TestCreateProductInvalidBody(t *testing.T) {
	env := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", decode[map[string]interface{}](t, resp)["message"])
}

func TestListProductsPaginationAndFilters(t *testing.T) {
	env := setupApp(t)
	for i := 1; i <= 15; i++ {
		env.seed(t, fmt.Sprintf("Book %02d", i), env.brand, false)
	}
	env.seed(t, "Withdrawn", env.brand, true)
	env.seed(t, "Elsewhere", env.otherBrand, false)

	resp := env.do(t, http.MethodGet, "/api/v1/products?brand="+env.brand.ID+"&user=true&page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "15", resp.Header.Get(handlers.TotalCountHeader))

	page := decode[[]models.Product](t, resp)
	assert.Len(t, page, 5)
	for _, p := range page {
		assert.Equal(t, env.brand.ID, p.BrandID)
		assert.False(t, p.IsDeleted)
	}

	resp = env.do(t, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "17", resp.Header.Get(handlers.TotalCountHeader))
	assert.Len(t, decode[[]models.Product](t, resp), 17)

	resp = env.do(t, http.MethodGet, "/api/v1/products?brand="+env.brand.ID+","+env.otherBrand.ID+"&user=true", nil)
	assert.Equal(t, "16", resp.Header.Get(handlers.TotalCountHeader))
}

func TestListProductsSortedByPrice(t *testing.T) {
	env := setupApp(t)
	for _, price := range []float64{12, 3, 7} {
		p := env.seed(t, fmt.Sprintf("Book %.0f", price), env.brand, false)
		_, err := env.products.Update(context.Background(), p.ID, models.ProductPatch{Price: &price})
		require.NoError(t, err)
	}

	resp := env.do(t, http.MethodGet, "/api/v1/products?sort=price&order=asc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var prices []float64
	for _, p := range decode[[]models.Product](t, resp) {
		prices = append(prices, p.Price)
	}
	assert.Equal(t, []float64{3, 7, 12}, prices)
}

func TestListProductsRejectsBadParameters(t *testing.T) {
	env := setupApp(t)

	for _, query := range []string{
		"sort=author",
		"sort=price&order=sideways",
		"user=maybe",
		"page=0&limit=10",
		"page=1&limit=ten",
		"page=2305843009213693953&limit=4",
		"page=4611686018427387905&limit=4",
	} {
		t.Run(query, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, "/api/v1/products?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestUnknownProductIsNotFound(t *testing.T) {
	env := setupApp(t)
	missing := "/api/v1/products/" + uuid.NewString()

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, missing, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, missing, map[string]interface{}{"title": "x"}).StatusCode)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, missing, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPatch, missing+"/restore", nil).StatusCode)
}

func TestUpdateProduct(t *testing.T) {
	env := setupApp(t)
	p := env.seed(t, "Dune", env.brand, false)
	path := "/api/v1/products/" + p.ID

	resp := env.do(t, http.MethodPatch, path, map[string]interface{}{
		"stockQuantity": 4,
		"coverImage":    `covers\dune.png`,
		"brand":         env.otherBrand.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.Product](t, resp)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, 4, updated.StockQuantity)
	assert.Equal(t, "/covers/dune.png", updated.CoverImage)
	require.NotNil(t, updated.Brand)
	assert.Equal(t, "Gollancz", updated.Brand.Name)

	resp = env.do(t, http.MethodPut, path, map[string]interface{}{"title": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteAndRestoreProduct(t *testing.T) {
	env := setupApp(t)
	p := env.seed(t, "Dune", env.brand, false)
	path := "/api/v1/products/" + p.ID

	resp := env.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[models.Product](t, resp).IsDeleted)

	resp = env.do(t, http.MethodGet, "/api/v1/products?user=true", nil)
	assert.Equal(t, "0", resp.Header.Get(handlers.TotalCountHeader))

	// Deleted products stay addressable by id.
	resp = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, path+"/restore", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restored := decode[models.Product](t, resp)
	assert.False(t, restored.IsDeleted)
	assert.Equal(t, p.Title, restored.Title)
	assert.Equal(t, p.CoverImage, restored.CoverImage)
}

func TestBrandAndCategoryRoutes(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/brands", map[string]string{"name": " Tor "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tor := decode[models.Brand](t, resp)
	assert.Equal(t, "Tor", tor.Name)

	resp = env.do(t, http.MethodGet, "/api/v1/brands", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Brand](t, resp), 3)

	resp = env.do(t, http.MethodGet, "/api/v1/brands/"+tor.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/categories/"+env.category.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Science Fiction", decode[models.Category](t, resp).Name)

	resp = env.do(t, http.MethodGet, "/api/v1/categories/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownBrandOrCategoryIsRejected(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title":      "Dune",
		"price":      9.99,
		"brand":      "no-such-brand",
		"category":   env.category.ID,
		"coverImage": "/images/dune.jpg",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Unknown brand or category", decode[map[string]interface{}](t, resp)["message"])

	resp = env.do(t, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, "0", resp.Header.Get(handlers.TotalCountHeader))

	p := env.seed(t, "Dune", env.brand, false)
	resp = env.do(t, http.MethodPatch, "/api/v1/products/"+p.ID, map[string]interface{}{"category": "no-such-category"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, env.category.ID, decode[models.Product](t, resp).CategoryID)
}
