// roles.go — role-based access control middleware.
//
// Platform roles form a total order (PENDING < USER < MODERATOR < ADMIN), so
// routes declare the minimum role they require rather than an allow-list.
// MinimumRole must be used AFTER the Auth middleware, because Auth is what
// populates the user on the request context.
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codeclash/codeclash-api/internal/models"
)

// MinimumRole returns a middleware handler that allows only users whose role
// ranks at least as high as the given minimum:
//
//	schedules.Post("/", middleware.MinimumRole(models.UserRoleModerator), handlers.CreateSchedule(db))
//
// Responds 403 Forbidden when the requester ranks below the minimum. The
// check is purely a gate — a rejected request performs no writes.
func MinimumRole(minimum models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			// Auth wasn't applied or failed silently; deny rather than guess.
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		if !models.IsRoleOrHigher(user.Role, minimum) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unauthorized, you currently don't meet the minimal requirement.",
			})
		}

		return c.Next()
	}
}
