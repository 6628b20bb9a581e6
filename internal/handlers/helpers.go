// helpers.go — small shared pieces used across the handler files.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codeclash/codeclash-api/internal/game"
	"github.com/codeclash/codeclash-api/internal/models"
)

// Stable not-found reasons; clients and tests match on these.
const (
	msgScheduleNotFound = "A game schedule does not exist for the given id."
	msgGameNotFound     = "A game does not exist by the provided game id."
	msgUserNotFound     = "A user does not exist by the provided id."
)

// errHandled signals that a helper already wrote the error response. The JSON
// write itself returns nil on success, so helpers must not return it directly:
// callers check for errHandled and stop without writing anything further.
var errHandled = errors.New("response already written")

// parseIDParam reads a uuid route parameter, responding 400 on garbage.
func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid " + name + " provided.",
		})
		return uuid.Nil, errHandled
	}
	return id, nil
}

// findSchedule loads a schedule together with its linked game (if any).
// Responds 404 itself and returns errHandled so callers can just bail out.
func findSchedule(c *fiber.Ctx, db *gorm.DB, id uuid.UUID) (*models.GameSchedule, error) {
	var schedule models.GameSchedule
	err := db.Preload("Game").First(&schedule, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgScheduleNotFound})
		return nil, errHandled
	}
	if err != nil {
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		return nil, errHandled
	}
	return &schedule, nil
}

// findGame loads a game together with its owning schedule.
func findGame(c *fiber.Ctx, db *gorm.DB, id uuid.UUID) (*models.Game, error) {
	var g models.Game
	err := db.Preload("Schedule").First(&g, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgGameNotFound})
		return nil, errHandled
	}
	if err != nil {
		_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
		return nil, errHandled
	}
	return &g, nil
}

// preconditionStatus maps a core game error onto its HTTP status. Every
// lifecycle precondition is a client error; a missing schedule relation is
// the one case reported as not-found.
func preconditionStatus(err error) int {
	if errors.Is(err, game.ErrGameMissingSchedule) {
		return fiber.StatusNotFound
	}
	return fiber.StatusBadRequest
}
