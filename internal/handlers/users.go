// users.go — profiles, stats and the moderator user search.
package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codeclash/codeclash-api/internal/middleware"
	"github.com/codeclash/codeclash-api/internal/models"
)

// searchLimitMax caps how many rows a single user search can return.
const searchLimitMax = 50

// UpdateProfileRequest patches the optional profile fields; nil keeps the
// previous value. Skills replaces the whole map when present.
type UpdateProfileRequest struct {
	FirstName *string          `json:"firstName"`
	LastName  *string          `json:"lastName"`
	About     *string          `json:"about"`
	Company   *string          `json:"company"`
	ForHire   *bool            `json:"forHire"`
	Skills    *models.SkillSet `json:"skills"`
}

// findUser loads a user by route id, responding 404 itself.
func findUser(c *fiber.Ctx, db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgUserNotFound})
		return nil, errHandled
	}
	if err != nil {
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		return nil, errHandled
	}
	return &user, nil
}

// canTouchProfile: a profile is writable by its owner or by moderators and up.
func canTouchProfile(actor *models.User, ownerID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || models.IsRoleOrHigher(actor.Role, models.UserRoleModerator)
}

// GetUserProfile returns a handler for GET /users/:id/profile. A user who has
// never filled anything in still gets an empty profile back rather than a 404.
func GetUserProfile(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		user, err := findUser(c, db, id)
		if err != nil {
			return nil
		}

		var profile models.UserProfile
		lookupErr := db.First(&profile, "user_id = ?", user.ID).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return c.JSON(models.UserProfile{UserID: user.ID, Skills: models.SkillSet{}})
		}
		if lookupErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}
		return c.JSON(profile)
	}
}

// UpdateUserProfile returns a handler for PATCH /users/:id/profile. Writable
// by the owner or ≥ MODERATOR; creates the profile row on first write.
func UpdateUserProfile(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		user, err := findUser(c, db, id)
		if err != nil {
			return nil
		}

		if !canTouchProfile(middleware.CurrentUser(c), user.ID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Unauthorized, you currently don't meet the minimal requirement.",
			})
		}

		var req UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Skills != nil {
			for _, rating := range []int{req.Skills.HTML, req.Skills.CSS, req.Skills.JS} {
				if rating < 1 || rating > 5 {
					return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Skill ratings range from 1 to 5."})
				}
			}
		}

		var profile models.UserProfile
		lookupErr := db.First(&profile, "user_id = ?", user.ID).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			profile = models.UserProfile{UserID: user.ID, Skills: models.SkillSet{}}
		} else if lookupErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		if req.FirstName != nil {
			profile.FirstName = req.FirstName
		}
		if req.LastName != nil {
			profile.LastName = req.LastName
		}
		if req.About != nil {
			profile.About = req.About
		}
		if req.Company != nil {
			profile.Company = req.Company
		}
		if req.ForHire != nil {
			profile.ForHire = *req.ForHire
		}
		if req.Skills != nil {
			profile.Skills = *req.Skills
		}

		if err := db.Save(&profile).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update profile"})
		}
		return c.JSON(profile)
	}
}

// GetUserStats returns a handler for GET /users/:id/stats. Users with no
// recorded games get zeroed counters.
func GetUserStats(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		user, err := findUser(c, db, id)
		if err != nil {
			return nil
		}

		var stats models.UserGameStats
		lookupErr := db.First(&stats, "user_id = ?", user.ID).Error
		if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return c.JSON(models.UserGameStats{UserID: user.ID})
		}
		if lookupErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}
		return c.JSON(stats)
	}
}

// SearchUsers returns a handler for GET /search/users (≥ MODERATOR). Matches
// username and/or email with a case-insensitive contains lookup.
func SearchUsers(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := strings.TrimSpace(c.Query("username"))
		email := strings.TrimSpace(c.Query("email"))
		if username == "" && email == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "One of the specified username or email within the query must not be empty.",
			})
		}

		limit := c.QueryInt("limit", searchLimitMax)
		if limit < 1 || limit > searchLimitMax {
			limit = searchLimitMax
		}

		query := db.Limit(limit).Order("username ASC")
		if username != "" {
			query = query.Where("username ILIKE ?", "%"+username+"%")
		}
		if email != "" {
			query = query.Where("email ILIKE ?", "%"+email+"%")
		}

		var users []models.User
		if err := query.Find(&users).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to search users"})
		}
		return c.JSON(users)
	}
}
