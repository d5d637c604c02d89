package handlers

import (
	"errors"

	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/response"
	"github.com/Shadow52186/rs-1/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// StockHandler handles admin stock endpoints
type StockHandler struct {
	stockService *services.StockService
}

// NewStockHandler creates a new stock handler
func NewStockHandler(stockService *services.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// StockRequest represents one credential pair
type StockRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BatchStockRequest represents a bulk stock upload
type BatchStockRequest struct {
	Entries []StockRequest `json:"entries"`
}

// ListByProduct handles the admin stock listing for a product
// @Summary List product stock
// @Description List all stock entries for a product, sold included
// @Tags Stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Router /admin/products/{id}/stock [get]
func (h *StockHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	stocks, err := h.stockService.ListByProduct(c.Context(), productID, true)
	if err != nil {
		return response.InternalServerError(c, "Failed to list stock")
	}

	return response.Success(c, "Stock retrieved successfully", stocks)
}

// Add handles adding one stock entry
// @Summary Add stock entry
// @Description Add one credential pair to a product's stock
// @Tags Stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body StockRequest true "Credential pair"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id}/stock [post]
func (h *StockHandler) Add(c *fiber.Ctx) error {
	productID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.StockInput{Username: req.Username, Password: req.Password}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	stock, err := h.stockService.Add(c.Context(), productID, input)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to add stock")
	}

	return response.Created(c, "Stock added successfully", stock)
}

// AddBatch handles bulk stock upload
// @Summary Add stock entries in bulk
// @Description Add several credential pairs to a product's stock
// @Tags Stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body BatchStockRequest true "Credential pairs"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/products/{id}/stock/batch [post]
func (h *StockHandler) AddBatch(c *fiber.Ctx) error {
	productID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	var req BatchStockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.Entries) == 0 {
		return response.BadRequest(c, "At least one entry is required")
	}

	inputs := make([]*services.StockInput, 0, len(req.Entries))
	for _, entry := range req.Entries {
		input := &services.StockInput{Username: entry.Username, Password: entry.Password}
		if err := validate.Struct(input); err != nil {
			return response.BadRequest(c, validate.Message(err))
		}
		inputs = append(inputs, input)
	}

	stocks, err := h.stockService.AddBatch(c.Context(), productID, inputs)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return response.NotFound(c, "Product not found")
		}
		return response.InternalServerError(c, "Failed to add stock")
	}

	return response.Created(c, "Stock added successfully", stocks)
}

// Update handles editing an unsold stock entry
// @Summary Update stock entry
// @Description Rewrite the credentials of an unsold stock entry
// @Tags Stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Stock ID"
// @Param body body StockRequest true "Credential pair"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/stock/{id} [put]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid stock ID")
	}

	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.StockInput{Username: req.Username, Password: req.Password}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	stock, err := h.stockService.Update(c.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStockNotFound):
			return response.NotFound(c, "Stock entry not found")
		case errors.Is(err, services.ErrStockAlreadySold):
			return response.Conflict(c, "Stock entry has already been sold")
		default:
			return response.InternalServerError(c, "Failed to update stock")
		}
	}

	return response.Success(c, "Stock updated successfully", stock)
}

// Delete handles removing an unsold stock entry
// @Summary Delete stock entry
// @Description Remove an unsold stock entry
// @Tags Stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Stock ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/stock/{id} [delete]
func (h *StockHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid stock ID")
	}

	if err := h.stockService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrStockNotFound):
			return response.NotFound(c, "Stock entry not found")
		case errors.Is(err, services.ErrStockAlreadySold):
			return response.Conflict(c, "Stock entry has already been sold")
		default:
			return response.InternalServerError(c, "Failed to delete stock")
		}
	}

	return response.Success(c, "Stock deleted successfully", nil)
}
