package handlers

import (
	"errors"
	"strings"

	"github.com/Shadow52186/rs-1/internal/adapters/persistence/models"
	"github.com/Shadow52186/rs-1/internal/core/domain"
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/pagination"
	"github.com/Shadow52186/rs-1/internal/pkg/response"
	"github.com/Shadow52186/rs-1/internal/pkg/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin user management, bans and dashboard stats
type AdminHandler struct {
	userAdminService *services.UserAdminService
	loginGuard       *services.LoginGuardService
	statsService     *services.StatsService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	userAdminService *services.UserAdminService,
	loginGuard *services.LoginGuardService,
	statsService *services.StatsService,
) *AdminHandler {
	return &AdminHandler{
		userAdminService: userAdminService,
		loginGuard:       loginGuard,
		statsService:     statsService,
	}
}

// ListUsers handles user listing and search
// @Summary List users
// @Description List users, optionally filtered by a username query
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string false "Username search query"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	query := strings.TrimSpace(c.Query("q"))

	var (
		users []*models.User
		total int64
		err   error
	)

	if query != "" {
		users, total, err = h.userAdminService.Search(c.Context(), query, params.Offset, params.Limit)
	} else {
		users, total, err = h.userAdminService.List(c.Context(), params.Offset, params.Limit)
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}

	return response.Success(c, "Users retrieved successfully",
		pagination.NewResponse(responses, params, total))
}

// GetUser handles fetching one user
// @Summary Get user
// @Description Get a user account by ID
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userAdminService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user.ToResponse())
}

// UpdateUser handles admin edits to a user account
// @Summary Update user
// @Description Edit username, password, balance or role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UserUpdateInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var input services.UserUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(&input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	user, err := h.userAdminService.Update(c.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Username already taken")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.Success(c, "User updated successfully", user.ToResponse())
}

// DeleteUser handles user deletion
// @Summary Delete user
// @Description Soft-delete a user account
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userAdminService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ListBannedIPs handles the ban list
// @Summary List banned IPs
// @Description List all permanently banned IP addresses
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/banned-ips [get]
func (h *AdminHandler) ListBannedIPs(c *fiber.Ctx) error {
	banned, err := h.loginGuard.ListBanned(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list banned IPs")
	}

	return response.Success(c, "Banned IPs retrieved successfully", banned)
}

// UnbanIP handles lifting a ban
// @Summary Unban IP
// @Description Lift the ban and clear attempt counters for an IP
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ip path string true "IP address"
// @Success 200 {object} response.Response
// @Router /admin/banned-ips/{ip} [delete]
func (h *AdminHandler) UnbanIP(c *fiber.Ctx) error {
	ip := strings.TrimSpace(c.Params("ip"))
	if ip == "" {
		return response.BadRequest(c, "Invalid IP address")
	}

	if err := h.loginGuard.Unban(c.Context(), ip); err != nil {
		return response.InternalServerError(c, "Failed to unban IP")
	}

	return response.Success(c, "IP unbanned successfully", nil)
}

// Stats handles the dashboard summary
// @Summary Store stats
// @Description Dashboard summary of users, sales, revenue and stock
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.statsService.Summary(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute stats")
	}

	return response.Success(c, "Stats retrieved successfully", stats)
}
