package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/pagination"
	"github.com/Shadow52186/rs-1/internal/pkg/response"
	"github.com/Shadow52186/rs-1/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles product endpoints
type ProductHandler struct {
	catalogService *services.CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// List handles product listing
// @Summary List products
// @Description List products with live stock counts, paginated
// @Tags Products
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	products, total, err := h.catalogService.ListProducts(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list products")
	}

	return response.Success(c, "Products retrieved successfully",
		pagination.NewResponse(products, params, total))
}

// Featured handles the landing page product list
// @Summary List featured products
// @Description List products flagged for the landing page
// @Tags Products
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /products/featured [get]
func (h *ProductHandler) Featured(c *fiber.Ctx) error {
	products, err := h.catalogService.ListFeatured(c.Context(), 12)
	if err != nil {
		return response.InternalServerError(c, "Failed to list featured products")
	}

	return response.Success(c, "Featured products retrieved successfully", products)
}

// Get handles fetching one product
// @Summary Get product
// @Description Get a product by ID with its stock count
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.catalogService.GetProduct(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to get product")
	}

	return response.Success(c, "Product retrieved successfully", product)
}

// Create handles product creation (admin)
// @Summary Create product
// @Description Create a product with an optional cover image
// @Tags Products
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Product name"
// @Param detail formData string false "Product detail"
// @Param price formData number true "Price"
// @Param category_id formData int true "Category ID"
// @Param is_featured formData bool false "Featured flag"
// @Param image formData file false "Cover image"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	input, err := parseProductForm(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product data")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	image, cleanup, err := openFormImage(c)
	if err != nil {
		return response.BadRequest(c, "Invalid image file")
	}
	defer cleanup()

	product, err := h.catalogService.CreateProduct(c.Context(), input, image)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			return response.NotFound(c, "Category not found")
		case errors.Is(err, services.ErrAssetStorageDisabled):
			return response.BadRequest(c, "Image uploads are not configured")
		default:
			return response.InternalServerError(c, "Failed to create product")
		}
	}

	return response.Created(c, "Product created successfully", product)
}

// Update handles product update (admin)
// @Summary Update product
// @Description Update a product; a new image replaces the old one
// @Tags Products
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param name formData string true "Product name"
// @Param detail formData string false "Product detail"
// @Param price formData number true "Price"
// @Param category_id formData int true "Category ID"
// @Param is_featured formData bool false "Featured flag"
// @Param image formData file false "Cover image"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	input, err := parseProductForm(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product data")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	image, cleanup, err := openFormImage(c)
	if err != nil {
		return response.BadRequest(c, "Invalid image file")
	}
	defer cleanup()

	product, err := h.catalogService.UpdateProduct(c.Context(), id, input, image)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		case errors.Is(err, domain.ErrCategoryNotFound):
			return response.NotFound(c, "Category not found")
		default:
			return response.InternalServerError(c, "Failed to update product")
		}
	}

	return response.Success(c, "Product updated successfully", product)
}

// Delete handles product deletion (admin)
// @Summary Delete product
// @Description Delete a product and its remaining stock
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	if err := h.catalogService.DeleteProduct(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to delete product")
	}

	return response.Success(c, "Product deleted successfully", nil)
}

// parseProductForm reads product fields from a multipart form
func parseProductForm(c *fiber.Ctx) (*services.ProductInput, error) {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil {
		return nil, err
	}

	categoryID, err := strconv.ParseUint(c.FormValue("category_id"), 10, 32)
	if err != nil {
		return nil, err
	}

	isFeatured, _ := strconv.ParseBool(c.FormValue("is_featured", "false"))

	return &services.ProductInput{
		Name:       strings.TrimSpace(c.FormValue("name")),
		Detail:     strings.TrimSpace(c.FormValue("detail")),
		Price:      price,
		CategoryID: uint(categoryID),
		IsFeatured: isFeatured,
	}, nil
}
