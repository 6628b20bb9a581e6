// auth.go — registration, email verification, login and session management.
//
// Sessions are signed JWTs (internal/auth) delivered in a cookie; the raw
// token is also stored on the user row so logout revokes every copy at once.
// New accounts start as PENDING and are promoted to USER when the emailed
// verification token is redeemed.
package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codeclash/codeclash-api/internal/auth"
	"github.com/codeclash/codeclash-api/internal/config"
	"github.com/codeclash/codeclash-api/internal/mail"
	"github.com/codeclash/codeclash-api/internal/middleware"
	"github.com/codeclash/codeclash-api/internal/models"
)

// reservedUsernames can never be registered; they collide with system
// accounts and support handles.
var reservedUsernames = []string{"admin", "administrator", "moderator", "codeclash", "support", "root"}

const (
	msgUsernameTaken = "A user already exists with the provided username."
	msgEmailTaken    = "A user already exists with the provided email."
)

// registerConflict maps a unique-index violation from the users table onto
// the client-facing 409 reason. Covers the race where a concurrent
// registration slips between the pre-check and the insert.
func registerConflict(err error) (string, bool) {
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key") {
		return "", false
	}
	if strings.Contains(msg, "idx_users_email") {
		return msgEmailTaken, true
	}
	return msgUsernameTaken, true
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	// Identifier accepts either the username or the email address.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// setSessionCookie writes the session token cookie. HTTPOnly keeps it away
// from page scripts; the domain comes from configuration so staging and
// production can scope it differently.
func setSessionCookie(c *fiber.Ctx, cfg *config.Config, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Domain:   cfg.CookieDomain,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   cfg.Env == "production",
		Path:     "/",
	})
}

// newVerificationToken returns a fresh random token for verification mail.
func newVerificationToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// Register handles POST /auth/register. Username and email uniqueness is
// case-insensitive; both collisions report a distinct 409. On success the
// user is created PENDING, a verification mail goes out, and a session cookie
// is returned so the fresh account is already signed in.
func Register(cfg *config.Config, db *gorm.DB, mailer mail.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		username := strings.TrimSpace(req.Username)
		email := strings.TrimSpace(req.Email)
		password := strings.TrimSpace(req.Password)

		if username == "" || email == "" || password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "username, email and password are all required",
			})
		}
		if len(password) < 6 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "password too short"})
		}
		for _, reserved := range reservedUsernames {
			if strings.EqualFold(username, reserved) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "The specified username is reserved and cannot be registered.",
				})
			}
		}

		var existing models.User
		err := db.Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", username, email).
			First(&existing).Error
		if err == nil {
			if strings.EqualFold(existing.Username, username) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msgUsernameTaken})
			}
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": msgEmailTaken})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		hashed, err := auth.HashPassword(password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register"})
		}

		user := models.User{
			Username: username,
			Email:    email,
			Password: hashed,
			Role:     models.UserRolePending,
		}
		verification := models.EmailVerification{Token: newVerificationToken()}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			verification.UserID = user.ID
			return tx.Create(&verification).Error
		})
		if txErr != nil {
			if reason, ok := registerConflict(txErr); ok {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": reason})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register"})
		}

		// Delivery failures shouldn't undo the registration; the user can
		// request a reverify.
		_ = mailer.Send([]string{user.Email}, "verify-email", map[string]string{
			"username": user.Username,
			"url":      cfg.FrontURL + "/verify?token=" + verification.Token,
		})

		if err := issueSession(c, cfg, db, &user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to register"})
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// issueSession mints a session token, persists it on the user row, and sets
// the cookie.
func issueSession(c *fiber.Ctx, cfg *config.Config, db *gorm.DB, user *models.User) error {
	token, err := auth.NewToken(cfg.JWTSecret, user.ID)
	if err != nil {
		return err
	}
	if err := db.Model(user).Update("token", token).Error; err != nil {
		return err
	}
	user.Token = &token
	setSessionCookie(c, cfg, token, time.Now().Add(7*24*time.Hour))
	return nil
}

// Verify handles GET /auth/verify?token=. Redeeming the token promotes the
// PENDING user to USER and removes the verification row in one transaction.
// Like the rest of the verification flow it always redirects to the frontend,
// whether or not the token resolved.
func Verify(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")

		var verification models.EmailVerification
		err := db.Preload("User").First(&verification, "token = ?", token).Error
		if err != nil {
			return c.Redirect(cfg.FrontURL)
		}

		_ = db.Transaction(func(tx *gorm.DB) error {
			if verification.User.Role == models.UserRolePending {
				if err := tx.Model(&verification.User).
					Update("role", models.UserRoleUser).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&verification).Error
		})

		return c.Redirect(cfg.FrontURL)
	}
}

// Reverify handles POST /auth/reverify for authenticated but still-PENDING
// users: it rotates the verification token and resends the mail.
func Reverify(cfg *config.Config, db *gorm.DB, mailer mail.Mailer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)
		if user.Role != models.UserRolePending {
			return c.JSON(fiber.Map{"message": user.Username + " is already verified"})
		}

		verification := models.EmailVerification{UserID: user.ID, Token: newVerificationToken()}
		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ?", user.ID).Delete(&models.EmailVerification{}).Error; err != nil {
				return err
			}
			return tx.Create(&verification).Error
		})
		if txErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to reverify"})
		}

		_ = mailer.Send([]string{user.Email}, "verify-email", map[string]string{
			"username": user.Username,
			"url":      cfg.FrontURL + "/verify?token=" + verification.Token,
		})
		return c.JSON(fiber.Map{"message": "Resent verification email."})
	}
}

// Login handles POST /auth/login. The same 400 is returned for an unknown
// identifier and a wrong password so accounts can't be enumerated.
func Login(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		var user models.User
		err := db.Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)",
			req.Identifier, req.Identifier).First(&user).Error
		if err != nil || !auth.CheckPassword(user.Password, req.Password) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "The provided username or password is not correct.",
			})
		}

		now := time.Now()
		if err := db.Model(&user).Update("last_sign_in", now).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to login"})
		}
		user.LastSignIn = &now

		if err := issueSession(c, cfg, db, &user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to login"})
		}
		return c.JSON(user)
	}
}

// Logout handles POST /auth/logout: clears the stored session token (which
// invalidates all outstanding copies) and expires the cookie.
func Logout(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.CurrentUser(c)

		if err := db.Model(user).Update("token", nil).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to logout"})
		}

		setSessionCookie(c, cfg, "", time.Now().Add(-time.Hour))
		return c.SendStatus(fiber.StatusOK)
	}
}

// Me handles GET /auth/user, returning the authenticated user.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(middleware.CurrentUser(c))
	}
}
