// applications.go — players applying to play in a scheduled game.
package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/codeclash/codeclash-api/internal/middleware"
	"github.com/codeclash/codeclash-api/internal/models"
)

// ApplyToSchedule returns a handler for POST /schedules/:id/applications
// (≥ USER). A user applies themselves; the unique (schedule, user) index is
// the real guard against double-applying, the early lookup just gives a
// cleaner 409.
func ApplyToSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		schedule, err := findSchedule(c, db, id)
		if err != nil {
			return nil
		}
		user := middleware.CurrentUser(c)

		var existing models.GameApplication
		lookupErr := db.Where("schedule_id = ? AND user_id = ?", schedule.ID, user.ID).
			First(&existing).Error
		if lookupErr == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "You have already applied to this game schedule.",
			})
		}
		if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		}

		application := models.GameApplication{ScheduleID: schedule.ID, UserID: user.ID}
		if err := db.Create(&application).Error; err != nil {
			// Lost the race against a concurrent apply from the same user.
			if strings.Contains(err.Error(), "duplicate key") {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "You have already applied to this game schedule.",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to apply"})
		}
		application.User = *user
		return c.Status(fiber.StatusCreated).JSON(application)
	}
}

// GetScheduleApplications returns a handler for GET
// /schedules/:id/applications (≥ MODERATOR): every application for the
// schedule with the applying user joined in.
func GetScheduleApplications(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		schedule, err := findSchedule(c, db, id)
		if err != nil {
			return nil
		}

		var applications []models.GameApplication
		if err := db.Preload("User").
			Where("schedule_id = ?", schedule.ID).
			Order("created_at ASC").
			Find(&applications).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch applications"})
		}
		return c.JSON(applications)
	}
}
