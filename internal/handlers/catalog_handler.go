package handlers

import (
	"bookheaven/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves brands and categories.
type CatalogHandler struct {
	brands     *services.BrandService
	categories *services.CategoryService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(brands *services.BrandService, categories *services.CategoryService) *CatalogHandler {
	return &CatalogHandler{brands: brands, categories: categories}
}

// RegisterRoutes registers the brand and category routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	brandRoutes := router.Group("/brands")
	brandRoutes.Get("/", h.HandleGetBrands)
	brandRoutes.Get("/:id", h.HandleGetBrandByID)
	brandRoutes.Post("/", h.HandleCreateBrand)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
	categoryRoutes.Post("/", h.HandleCreateCategory)
}

// HandleGetBrands lists all brands.
func (h *CatalogHandler) HandleGetBrands(c *fiber.Ctx) error {
	brands, err := h.brands.GetAllBrands(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(brands)
}

// HandleGetBrandByID retrieves a single brand by its ID.
func (h *CatalogHandler) HandleGetBrandByID(c *fiber.Ctx) error {
	brand, err := h.brands.GetBrandByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(brand)
}

// HandleCreateBrand creates a new brand.
func (h *CatalogHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var input services.NamedInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	brand, err := h.brands.CreateBrand(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(brand)
}

// HandleGetCategories lists all categories.
func (h *CatalogHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.categories.GetAllCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// HandleGetCategoryByID retrieves a single category by its ID.
func (h *CatalogHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	category, err := h.categories.GetCategoryByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(category)
}

// HandleCreateCategory creates a new category.
func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var input services.NamedInput
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	category, err := h.categories.CreateCategory(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}
