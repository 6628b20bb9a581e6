// schedules.go — the /schedules routes: CRUD plus the lifecycle transitions.
//
// A schedule is the planned slot; activating it is the only way a game comes
// into existence. The transition handlers run their read-check-mutate-write
// sequence inside a single transaction with the schedule row locked FOR
// UPDATE, so two concurrent activation attempts cannot both succeed — the
// second observes the already-updated row and fails its precondition check.
//
// Permission model: reads are public; every mutation requires a minimum role
// of MODERATOR, enforced by middleware.MinimumRole on the route.
package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codeclash/codeclash-api/internal/game"
	"github.com/codeclash/codeclash-api/internal/models"
	"github.com/codeclash/codeclash-api/internal/websocket"
)

// currentSeason is stamped onto games spawned by schedule activation.
// TODO: drive this from a seasons table once multi-season scheduling lands.
const currentSeason = 3

type CreateScheduleRequest struct {
	Title      string                      `json:"title"`
	Mode       models.GameMode             `json:"mode"`
	StartTime  *time.Time                  `json:"startTime"`
	Objectives map[string]models.Objective `json:"objectives"`
	Templates  *models.Templates           `json:"templates"`
}

// UpdateScheduleRequest is a partial patch of the setup document; nil fields
// keep their previous values.
type UpdateScheduleRequest struct {
	Title      *string                     `json:"title"`
	Mode       *models.GameMode            `json:"mode"`
	StartTime  *time.Time                  `json:"startTime"`
	Objectives map[string]models.Objective `json:"objectives"`
	Templates  *models.Templates           `json:"templates"`
}

func validMode(mode models.GameMode) bool {
	switch mode {
	case models.GameModeClassic, models.GameModeBlitz, models.GameModeZenGarden:
		return true
	}
	return false
}

// GetSchedules returns a handler for GET /schedules — newest first.
func GetSchedules(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var schedules []models.GameSchedule
		if err := db.Order("created_at DESC").Find(&schedules).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch schedules"})
		}
		return c.JSON(schedules)
	}
}

// GetLatestSchedule returns a handler for GET /schedules/latest — the
// schedule with the furthest-out start time, i.e. the next/most recent slot.
func GetLatestSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var schedule models.GameSchedule
		err := db.Order("setup->>'startTime' DESC NULLS LAST").First(&schedule).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Currently no schedules exist."})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch schedule"})
		}
		return c.JSON(schedule)
	}
}

// GetSchedulesByStatus returns a handler for GET /schedules/status/:status.
func GetSchedulesByStatus(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := models.GameStatus(strings.ToUpper(c.Params("status")))
		switch status {
		case models.GameStatusScheduled, models.GameStatusActive, models.GameStatusEnded:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid status provided."})
		}

		var schedules []models.GameSchedule
		if err := db.Where("status = ?", status).Order("created_at DESC").Find(&schedules).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch schedules"})
		}
		return c.JSON(schedules)
	}
}

// GetSchedule returns a handler for GET /schedules/:id.
func GetSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		schedule, err := findSchedule(c, db, id)
		if err != nil {
			return nil
		}
		return c.JSON(schedule)
	}
}

// CreateSchedule returns a handler for POST /schedules (≥ MODERATOR).
func CreateSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateScheduleRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
		}
		if !validMode(req.Mode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "mode must be 'Classic', 'Blitz', or 'Zen Garden'",
			})
		}

		schedule := models.GameSchedule{
			Status: models.GameStatusScheduled,
			Setup: models.ScheduleSetup{
				Title:      req.Title,
				Mode:       req.Mode,
				StartTime:  req.StartTime,
				Objectives: req.Objectives,
				Templates:  req.Templates,
			},
		}
		if err := db.Create(&schedule).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create schedule"})
		}
		return c.Status(fiber.StatusCreated).JSON(schedule)
	}
}

// UpdateSchedule returns a handler for PATCH /schedules/:id (≥ MODERATOR).
// Only setup fields can be patched; lifecycle status moves exclusively
// through the activate/end endpoints.
func UpdateSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		schedule, err := findSchedule(c, db, id)
		if err != nil {
			return nil
		}

		var req UpdateScheduleRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Mode != nil && !validMode(*req.Mode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "mode must be 'Classic', 'Blitz', or 'Zen Garden'",
			})
		}

		if req.Title != nil {
			schedule.Setup.Title = *req.Title
		}
		if req.Mode != nil {
			schedule.Setup.Mode = *req.Mode
		}
		if req.StartTime != nil {
			schedule.Setup.StartTime = req.StartTime
		}
		if req.Objectives != nil {
			schedule.Setup.Objectives = req.Objectives
		}
		if req.Templates != nil {
			schedule.Setup.Templates = req.Templates
		}

		if err := db.Model(schedule).Update("setup", schedule.Setup).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update schedule"})
		}
		return c.JSON(schedule)
	}
}

// lockSchedule re-reads a schedule FOR UPDATE inside a transaction, together
// with any game already linked to it. Everything a lifecycle transition
// checks is read under the lock.
func lockSchedule(tx *gorm.DB, id interface{}) (*models.GameSchedule, error) {
	var schedule models.GameSchedule
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&schedule, "id = ?", id).Error; err != nil {
		return nil, err
	}

	var linked models.Game
	err := tx.First(&linked, "schedule_id = ?", schedule.ID).Error
	if err == nil {
		schedule.Game = &linked
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &schedule, nil
}

// ActivateSchedule returns a handler for POST /schedules/:id/activate
// (≥ MODERATOR). On success the schedule moves SCHEDULED -> ACTIVE and the
// linked game is created from the setup document, all in one transaction.
func ActivateSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}

		var schedule *models.GameSchedule
		txErr := db.Transaction(func(tx *gorm.DB) error {
			schedule, err = lockSchedule(tx, id)
			if err != nil {
				return err
			}
			if err := game.CheckActivate(schedule); err != nil {
				return err
			}

			spawned := game.NewFromSchedule(schedule, currentSeason)
			if err := tx.Create(&spawned).Error; err != nil {
				return err
			}

			schedule.Status = models.GameStatusActive
			schedule.Game = &spawned
			return tx.Model(&models.GameSchedule{}).
				Where("id = ?", schedule.ID).
				Update("status", models.GameStatusActive).Error
		})

		return respondTransition(c, schedule, txErr)
	}
}

// EndSchedule returns a handler for POST /schedules/:id/end (≥ MODERATOR).
// Moves an ACTIVE schedule (and its game, when present) to ENDED, computing
// the winner into the game's storage.meta.
func EndSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}

		var schedule *models.GameSchedule
		txErr := db.Transaction(func(tx *gorm.DB) error {
			schedule, err = lockSchedule(tx, id)
			if err != nil {
				return err
			}
			if err := game.CheckEnd(schedule); err != nil {
				return err
			}

			schedule.Status = models.GameStatusEnded
			if err := tx.Model(&models.GameSchedule{}).
				Where("id = ?", schedule.ID).
				Update("status", models.GameStatusEnded).Error; err != nil {
				return err
			}

			if schedule.Game != nil {
				game.Finish(schedule.Game)
				if err := tx.Model(&models.Game{}).
					Where("id = ?", schedule.Game.ID).
					Updates(map[string]interface{}{
						"status":  schedule.Game.Status,
						"storage": schedule.Game.Storage,
					}).Error; err != nil {
					return err
				}
				if err := creditResults(tx, schedule.Game); err != nil {
					return err
				}
			}
			return nil
		})

		return respondTransition(c, schedule, txErr)
	}
}

// DeleteSchedule returns a handler for DELETE /schedules/:id (≥ MODERATOR).
// Legal only while SCHEDULED with no linked game; 202 on success.
func DeleteSchedule(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			schedule, err := lockSchedule(tx, id)
			if err != nil {
				return err
			}
			if err := game.CheckDelete(schedule); err != nil {
				return err
			}
			return tx.Delete(schedule).Error
		})

		if txErr != nil {
			return transitionError(c, txErr)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Schedule deleted."})
	}
}

// respondTransition sends the updated schedule, or maps the transaction
// error onto the right status code.
func respondTransition(c *fiber.Ctx, schedule *models.GameSchedule, txErr error) error {
	if txErr != nil {
		return transitionError(c, txErr)
	}
	return c.JSON(schedule)
}

func transitionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgScheduleNotFound})
	}
	switch {
	case errors.Is(err, game.ErrScheduleNotScheduled),
		errors.Is(err, game.ErrScheduleHasGame),
		errors.Is(err, game.ErrScheduleNotActive),
		errors.Is(err, game.ErrScheduleDeleteNotScheduled),
		errors.Is(err, game.ErrScheduleDeleteHasGame):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "database error"})
}

// broadcastGame pushes the full updated game document to spectators. Failures
// are swallowed: the broadcast is best effort layered on top of the persisted
// state, never a reason to fail the request.
func broadcastGame(hub *websocket.Hub, g *models.Game) {
	if hub == nil {
		return
	}
	_ = hub.BroadcastGame(g.ID.String(), g)
}
