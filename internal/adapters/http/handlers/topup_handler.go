package handlers

import (
	"errors"
	"strings"

	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/pagination"
	"github.com/Shadow52186/rs-1/internal/pkg/response"
	"github.com/Shadow52186/rs-1/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// TopupHandler handles balance topup endpoints
type TopupHandler struct {
	topupService *services.TopupService
}

// NewTopupHandler creates a new topup handler
func NewTopupHandler(topupService *services.TopupService) *TopupHandler {
	return &TopupHandler{topupService: topupService}
}

// SlipRequest represents a bank-slip submission
type SlipRequest struct {
	QRText string `json:"qr_text"`
}

// GiftLinkRequest represents a gift-link submission
type GiftLinkRequest struct {
	Link string `json:"link"`
}

// VerifySlip handles bank-slip topups
// @Summary Verify bank slip
// @Description Verify a transfer slip QR payload and credit its amount
// @Tags Topup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SlipRequest true "Slip QR payload"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /topup/slip [post]
func (h *TopupHandler) VerifySlip(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req SlipRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.SlipInput{QRText: strings.TrimSpace(req.QRText)}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	result, err := h.topupService.VerifySlip(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlipAlreadyUsed):
			return response.Conflict(c, "This slip has already been used")
		case errors.Is(err, domain.ErrSlipExpired):
			return response.BadRequest(c, "Slip is too old, only recent transfers are accepted")
		case errors.Is(err, domain.ErrSlipInvalid):
			return response.BadRequest(c, "Slip is not valid")
		case errors.Is(err, domain.ErrExternalService):
			return response.BadGateway(c, "Payment verification service is unavailable")
		default:
			return response.InternalServerError(c, "Failed to verify slip")
		}
	}

	return response.Success(c, "Balance credited successfully", result)
}

// RedeemGiftLink handles gift-link topups
// @Summary Redeem gift link
// @Description Redeem a TrueMoney gift link and credit its amount
// @Tags Topup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GiftLinkRequest true "Gift link"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /topup/gift [post]
func (h *TopupHandler) RedeemGiftLink(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req GiftLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.GiftLinkInput{Link: strings.TrimSpace(req.Link)}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	result, err := h.topupService.RedeemGiftLink(c.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLinkAlreadyUsed):
			return response.Conflict(c, "This gift link has already been redeemed")
		case errors.Is(err, domain.ErrInvalidLink):
			return response.BadRequest(c, "Gift link is invalid or expired")
		case errors.Is(err, domain.ErrExternalService):
			return response.BadGateway(c, "Payment verification service is unavailable")
		default:
			return response.InternalServerError(c, "Failed to redeem gift link")
		}
	}

	return response.Success(c, "Balance credited successfully", result)
}

// History handles the user's topup history
// @Summary My topups
// @Description List the caller's balance credits
// @Tags Topup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /topup/history [get]
func (h *TopupHandler) History(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)

	histories, total, err := h.topupService.History(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list topups")
	}

	return response.Success(c, "Topups retrieved successfully",
		pagination.NewResponse(histories, params, total))
}

// AllHistory handles the admin topup log
// @Summary All topups
// @Description List every balance credit across all users
// @Tags Topup
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/topups [get]
func (h *TopupHandler) AllHistory(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	histories, total, err := h.topupService.AllHistory(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list topups")
	}

	return response.Success(c, "Topups retrieved successfully",
		pagination.NewResponse(histories, params, total))
}
