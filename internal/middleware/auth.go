// Package middleware contains HTTP middleware functions for the Code Clash API.
// Middleware sits between the HTTP server and route handlers — it runs on every
// request that passes through it, making it the right place for cross-cutting
// concerns like authentication and role gating.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codeclash/codeclash-api/internal/auth"
	"github.com/codeclash/codeclash-api/internal/config"
	"github.com/codeclash/codeclash-api/internal/models"
)

// Auth returns a middleware handler that resolves the authenticated user:
//
//  1. Reads the session token from the "token" cookie, falling back to an
//     "Authorization: Bearer" header.
//  2. Verifies the JWT signature and expiry.
//  3. Loads the user row and checks the presented token matches the stored
//     session token — a cleared column (logout) invalidates every copy.
//  4. Stores the user in the request context (c.Locals) so downstream
//     handlers can read it without re-parsing the token.
//
// This is a closure — it captures cfg and db so they're available on every
// request without global state.
func Auth(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(auth.CookieName)
		if tokenStr == "" {
			header := c.Get("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				tokenStr = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		claims, err := auth.VerifyToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session token",
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session token",
			})
		}

		// The stored token is the source of truth: logout clears it and any
		// previously issued token stops working immediately.
		if user.Token == nil || *user.Token != tokenStr {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session token",
			})
		}

		c.Locals("user", &user)
		c.Locals("userRole", string(user.Role))

		return c.Next()
	}
}

// CurrentUser reads the authenticated user the Auth middleware stored on the
// request context. Returns nil when called on a route without Auth applied.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
