package middleware

import (
	"github.com/Shadow52186/rs-1/internal/core/services"
	"github.com/Shadow52186/rs-1/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BanCheck rejects requests from banned IPs before credentials are even
// parsed. The message is fixed so a banned caller learns nothing about
// which accounts exist.
func BanCheck(guard *services.LoginGuardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		banned, err := guard.IsBanned(c.Context(), c.IP())
		if err != nil {
			return response.InternalServerError(c, "Failed to check access")
		}
		if banned {
			return response.TooManyRequests(c, "Access blocked due to repeated failed attempts")
		}
		return c.Next()
	}
}
