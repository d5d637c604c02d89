package handlers

import (
	"errors"

	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/pagination"
	"github.com/Shadow52186/rs-1/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PurchaseHandler handles purchase endpoints
type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// Buy handles buying one unit of a product
// @Summary Buy product
// @Description Debit the balance and hand over one credential pair
// @Tags Purchases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 402 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /products/{id}/buy [post]
func (h *PurchaseHandler) Buy(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	productID, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	receipt, err := h.purchaseService.Buy(c.Context(), userID, productID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			return response.NotFound(c, "Product not found")
		case errors.Is(err, domain.ErrOutOfStock):
			return response.Conflict(c, "Product is out of stock")
		case errors.Is(err, domain.ErrInsufficientBalance):
			return response.Error(c, fiber.StatusPaymentRequired, "Insufficient point balance")
		default:
			return response.InternalServerError(c, "Failed to complete purchase")
		}
	}

	return response.Success(c, "Purchase completed successfully", receipt)
}

// History handles the user's purchase history
// @Summary My purchases
// @Description List the caller's purchases with the delivered credentials
// @Tags Purchases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /purchases [get]
func (h *PurchaseHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	histories, total, err := h.purchaseService.History(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list purchases")
	}

	return response.Success(c, "Purchases retrieved successfully",
		pagination.NewResponse(histories, params, total))
}

// SalesLog handles the admin sales log
// @Summary Sales log
// @Description List every sale with its snapshot data
// @Tags Purchases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/sales [get]
func (h *PurchaseHandler) SalesLog(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	histories, total, err := h.purchaseService.SalesLog(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list sales")
	}

	return response.Success(c, "Sales retrieved successfully",
		pagination.NewResponse(histories, params, total))
}
