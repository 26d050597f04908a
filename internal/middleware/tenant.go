package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sekolah-go-api/internal/utils"
)

// RequireSchool rejects authenticated requests whose token carries no school.
// Every query downstream is partitioned by that school.
func RequireSchool() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if SchoolID(c) == 0 {
			return utils.SendError(c, fiber.StatusForbidden, "token is not bound to a school")
		}
		if UserID(c) == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}
