// games.go — the /games routes.
//
// Games normally come into existence through schedule activation; the create
// endpoint here exists for the rare case of attaching a game to a schedule
// that was activated out of band. Mutations that can race (end, auto-assign)
// follow the same locked-transaction shape as the schedule transitions.
package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codeclash/codeclash-api/internal/game"
	"github.com/codeclash/codeclash-api/internal/models"
	"github.com/codeclash/codeclash-api/internal/websocket"
)

// seasonPageDefault and seasonPageMax bound the first/after pagination on the
// season listing.
const (
	seasonPageDefault = 20
	seasonPageMax     = 100
)

type CreateGameRequest struct {
	ScheduleID uuid.UUID `json:"scheduleId"`
	Season     int       `json:"season"`
}

// gameWithPlayers is the ?players=true response shape: the game document plus
// the resolved user records of everyone assigned to it.
type gameWithPlayers struct {
	*models.Game
	Players []models.User `json:"players"`
}

// GetGames returns a handler for GET /games — newest first.
func GetGames(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var games []models.Game
		if err := db.Order("created_at DESC").Find(&games).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
		}
		return c.JSON(games)
	}
}

// GetLatestGame returns a handler for GET /games/latest.
func GetLatestGame(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var g models.Game
		err := db.Order("created_at DESC").First(&g).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Currently no games exist."})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
		}
		return c.JSON(g)
	}
}

// GetActiveGame returns a handler for GET /games/active — the game currently
// being played, when there is one.
func GetActiveGame(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var g models.Game
		err := db.Where("status = ?", models.GameStatusActive).
			Order("created_at DESC").First(&g).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "There is currently no active game."})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch game"})
		}
		return c.JSON(g)
	}
}

// GetGamesBySeason returns a handler for GET /games/season/:season with
// first/after pagination: ?first caps the page size and ?after is the offset
// to resume from.
func GetGamesBySeason(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		season, err := strconv.Atoi(c.Params("season"))
		if err != nil || season < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid season provided."})
		}

		first := c.QueryInt("first", seasonPageDefault)
		if first < 1 {
			first = seasonPageDefault
		}
		if first > seasonPageMax {
			first = seasonPageMax
		}
		after := c.QueryInt("after", 0)
		if after < 0 {
			after = 0
		}

		var games []models.Game
		if err := db.Where("season = ?", season).
			Order("created_at DESC").
			Limit(first).Offset(after).
			Find(&games).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch games"})
		}

		return c.JSON(fiber.Map{
			"data": games,
			"pagination": fiber.Map{
				"first": first,
				"after": after,
				"next":  after + len(games),
			},
		})
	}
}

// GetGame returns a handler for GET /games/:id. With ?players=true the
// assigned players' user records are joined into the response.
func GetGame(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		g, err := findGame(c, db, id)
		if err != nil {
			return nil
		}

		if !c.QueryBool("players") {
			return c.JSON(g)
		}

		ids := make([]uuid.UUID, 0, len(g.Storage.Players))
		for _, player := range g.Storage.Players {
			ids = append(ids, player.ID)
		}
		players := []models.User{}
		if len(ids) > 0 {
			if err := db.Where("id IN ?", ids).Find(&players).Error; err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch players"})
			}
		}
		return c.JSON(gameWithPlayers{Game: g, Players: players})
	}
}

// CreateGame returns a handler for POST /games (≥ MODERATOR): attaches a new
// game to an already-ACTIVE schedule that has none.
func CreateGame(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateGameRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.ScheduleID == uuid.Nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "scheduleId is required"})
		}
		season := req.Season
		if season == 0 {
			season = currentSeason
		}
		if season < 1 || season > currentSeason {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid season provided."})
		}

		var created models.Game
		txErr := db.Transaction(func(tx *gorm.DB) error {
			schedule, err := lockSchedule(tx, req.ScheduleID)
			if err != nil {
				return err
			}
			if err := game.CheckCreateGame(schedule); err != nil {
				return err
			}
			created = game.NewFromSchedule(schedule, season)
			return tx.Create(&created).Error
		})

		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgScheduleNotFound})
			}
			if errors.Is(txErr, game.ErrCreateScheduleNotOpen) || errors.Is(txErr, game.ErrScheduleHasGame) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": txErr.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create game"})
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateGame returns a handler for PATCH /games/:id (≥ MODERATOR). The patch
// merges shallowly into the storage document; when the game is ACTIVE the
// updated document is broadcast to spectators.
func UpdateGame(db *gorm.DB, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		g, err := findGame(c, db, id)
		if err != nil {
			return nil
		}

		var patch game.Patch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if patch.Mode != nil && !validMode(*patch.Mode) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "mode must be 'Classic', 'Blitz', or 'Zen Garden'",
			})
		}

		game.ApplyPatch(g, patch)

		if err := db.Model(g).Updates(map[string]interface{}{
			"mode":      g.Mode,
			"video_url": g.VideoURL,
			"storage":   g.Storage,
		}).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update game"})
		}

		if g.Status == models.GameStatusActive {
			broadcastGame(hub, g)
		}
		return c.JSON(g)
	}
}

// ActivateGame returns a handler for POST /games/:id/activate (≥ MODERATOR):
// forces the game (back) to ACTIVE and notifies spectators.
func ActivateGame(db *gorm.DB, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		g, err := findGame(c, db, id)
		if err != nil {
			return nil
		}

		g.Status = models.GameStatusActive
		if err := db.Model(g).Update("status", models.GameStatusActive).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to activate game"})
		}

		broadcastGame(hub, g)
		return c.JSON(g)
	}
}

// EndGame returns a handler for POST /games/:id/end (≥ MODERATOR). Ends the
// game, computes the winner into storage.meta, moves the owning schedule to
// ENDED alongside it, and credits the players' win/loss counters. A dead heat
// records the tie flags and leaves everyone's counters untouched.
func EndGame(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}

		var g models.Game
		txErr := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&g, "id = ?", id).Error; err != nil {
				return err
			}
			if err := game.CheckGameEnd(&g); err != nil {
				return err
			}

			game.Finish(&g)
			if err := tx.Model(&models.Game{}).
				Where("id = ?", g.ID).
				Updates(map[string]interface{}{
					"status":  g.Status,
					"storage": g.Storage,
				}).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.GameSchedule{}).
				Where("id = ? AND status = ?", g.ScheduleID, models.GameStatusActive).
				Update("status", models.GameStatusEnded).Error; err != nil {
				return err
			}

			return creditResults(tx, &g)
		})

		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgGameNotFound})
			}
			if errors.Is(txErr, game.ErrGameEndNotActive) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": txErr.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to end game"})
		}
		return c.JSON(g)
	}
}

// creditResults bumps each assigned player's win or loss counter from the
// finished game's outcome. Ties credit nobody.
func creditResults(tx *gorm.DB, g *models.Game) error {
	winners, losers := game.Results(g)
	if err := bumpStats(tx, winners, "wins"); err != nil {
		return err
	}
	return bumpStats(tx, losers, "losses")
}

// bumpStats increments one counter column per user. Players without a stats
// row yet get one inserted with the counter at 1; the on-conflict increment
// covers everyone else.
func bumpStats(tx *gorm.DB, userIDs []uuid.UUID, column string) error {
	for _, userID := range userIDs {
		stats := models.UserGameStats{UserID: userID}
		if column == "wins" {
			stats.Wins = 1
		} else {
			stats.Losses = 1
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				column: gorm.Expr(column + " + 1"),
			}),
		}).Create(&stats).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteGame returns a handler for DELETE /games/:id (≥ ADMIN). Removes the
// game only; the schedule keeps its status and can have a new game created
// against it.
func DeleteGame(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}
		g, err := findGame(c, db, id)
		if err != nil {
			return nil
		}

		if err := db.Delete(g).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete game"})
		}
		return c.JSON(fiber.Map{"message": "Game deleted."})
	}
}

// AutoAssignGame returns a handler for POST /games/:id/auto-assign
// (≥ MODERATOR). Ranks the schedule's distinct applicants and writes the
// resulting players and editors maps; see the game package for the rules.
// Succeeds with 200 and no body.
func AutoAssignGame(db *gorm.DB, ranker game.Ranker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return nil
		}

		txErr := db.Transaction(func(tx *gorm.DB) error {
			var g models.Game
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&g, "id = ?", id).Error; err != nil {
				return err
			}

			var applications []models.GameApplication
			if err := tx.Preload("User").Preload("User.GameStats").
				Where("schedule_id = ?", g.ScheduleID).
				Order("created_at ASC").
				Find(&applications).Error; err != nil {
				return err
			}

			applicants := make([]game.Applicant, 0, len(applications))
			for _, application := range applications {
				applicant := game.Applicant{User: application.User}
				if application.User.GameStats != nil {
					applicant.Stats = *application.User.GameStats
				}
				applicants = append(applicants, applicant)
			}

			if err := game.AutoAssign(&g, applicants, ranker); err != nil {
				return err
			}
			return tx.Model(&models.Game{}).
				Where("id = ?", g.ID).
				Update("storage", g.Storage).Error
		})

		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgGameNotFound})
			}
			switch {
			case errors.Is(txErr, game.ErrGameNotActive),
				errors.Is(txErr, game.ErrGameMissingSchedule),
				errors.Is(txErr, game.ErrAlreadyAssigned):
				return c.Status(preconditionStatus(txErr)).JSON(fiber.Map{"error": txErr.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to auto-assign players"})
		}
		return c.SendStatus(fiber.StatusOK)
	}
}
