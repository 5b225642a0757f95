package handlers

import (
	"strconv"

	"bookheaven/internal/apperrors"
	"bookheaven/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TotalCountHeader carries the number of products matching a listing,
// regardless of pagination.
const TotalCountHeader = "X-Total-Count"

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Patch("/:id/restore", h.HandleRestoreProduct)
}

// HandleGetProducts lists products. The response body is the page of
// products; the total match count travels in the X-Total-Count header.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	params, err := parseListParams(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListProducts(c.UserContext(), params)
	if err != nil {
		return err
	}
	c.Set(TotalCountHeader, strconv.FormatInt(page.Total, 10))
	return c.JSON(page.Products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		h.logger.Debug("invalid product body", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return err
	}
	h.logger.Info("product created", zap.String("product_id", product.ID), zap.String("title", product.Title))
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		h.logger.Debug("invalid product body", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleDeleteProduct soft-deletes a product and returns it.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// HandleRestoreProduct clears the deleted flag of a product.
func (h *ProductHandler) HandleRestoreProduct(c *fiber.Ctx) error {
	product, err := h.service.RestoreProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(product)
}

// parseListParams reads the listing query string. brand and category may be
// repeated; page and limit stay nil when absent.
func parseListParams(c *fiber.Ctx) (services.ListParams, error) {
	args := c.Context().QueryArgs()
	params := services.ListParams{
		Brand:    multiValue(args.PeekMulti("brand")),
		Category: multiValue(args.PeekMulti("category")),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
	}

	if raw := c.Query("user"); raw != "" {
		user, err := strconv.ParseBool(raw)
		if err != nil {
			return params, apperrors.Invalid("user", "must be a boolean")
		}
		params.User = user
	}

	var err error
	if params.Page, err = optionalInt(c, "page"); err != nil {
		return params, err
	}
	if params.Limit, err = optionalInt(c, "limit"); err != nil {
		return params, err
	}
	return params, nil
}

func multiValue(raw [][]byte) []string {
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		values = append(values, string(v))
	}
	return values
}

func optionalInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.Invalid(key, "must be an integer")
	}
	return &n, nil
}
