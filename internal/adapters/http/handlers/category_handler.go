package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/response"
	"github.com/Shadow52186/rs-1/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	catalogService *services.CatalogService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(catalogService *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService}
}

// List handles category listing
// @Summary List categories
// @Description List all product categories
// @Tags Categories
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.catalogService.ListCategories(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list categories")
	}

	return response.Success(c, "Categories retrieved successfully", categories)
}

// Get handles fetching one category
// @Summary Get category
// @Description Get a category by ID
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	category, err := h.catalogService.GetCategory(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to get category")
	}

	return response.Success(c, "Category retrieved successfully", category)
}

// Products handles listing a category's products
// @Summary List category products
// @Description List products belonging to a category, with stock counts
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /categories/{id}/products [get]
func (h *CategoryHandler) Products(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	products, err := h.catalogService.ListProductsByCategory(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to list products")
	}

	return response.Success(c, "Products retrieved successfully", products)
}

// Create handles category creation (admin)
// @Summary Create category
// @Description Create a category with an optional cover image
// @Tags Categories
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Category name"
// @Param image formData file false "Cover image"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	input := &services.CategoryInput{
		Name: strings.TrimSpace(c.FormValue("name")),
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	image, cleanup, err := openFormImage(c)
	if err != nil {
		return response.BadRequest(c, "Invalid image file")
	}
	defer cleanup()

	category, err := h.catalogService.CreateCategory(c.Context(), input, image)
	if err != nil {
		if errors.Is(err, services.ErrAssetStorageDisabled) {
			return response.BadRequest(c, "Image uploads are not configured")
		}
		return response.InternalServerError(c, "Failed to create category")
	}

	return response.Created(c, "Category created successfully", category)
}

// Update handles category update (admin)
// @Summary Update category
// @Description Update a category; a new image replaces the old one
// @Tags Categories
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param name formData string true "Category name"
// @Param image formData file false "Cover image"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	input := &services.CategoryInput{
		Name: strings.TrimSpace(c.FormValue("name")),
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	image, cleanup, err := openFormImage(c)
	if err != nil {
		return response.BadRequest(c, "Invalid image file")
	}
	defer cleanup()

	category, err := h.catalogService.UpdateCategory(c.Context(), id, input, image)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return response.NotFound(c, "Category not found")
		}
		return response.InternalServerError(c, "Failed to update category")
	}

	return response.Success(c, "Category updated successfully", category)
}

// Delete handles category deletion (admin)
// @Summary Delete category
// @Description Delete an empty category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid category ID")
	}

	if err := h.catalogService.DeleteCategory(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			return response.NotFound(c, "Category not found")
		case errors.Is(err, services.ErrCategoryNotEmpty):
			return response.Conflict(c, "Category still has products")
		default:
			return response.InternalServerError(c, "Failed to delete category")
		}
	}

	return response.Success(c, "Category deleted successfully", nil)
}

// parseID extracts the :id path parameter
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// openFormImage opens the optional "image" multipart field.
// Returns a nil reader when no file was sent.
func openFormImage(c *fiber.Ctx) (io.Reader, func(), error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file attached is fine
		return nil, func() {}, nil
	}

	var file multipart.File
	file, err = fileHeader.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return file, func() { file.Close() }, nil
}
