// cmd/server/main.go
// Entry point for the Code Clash API server. The cmd/ folder holds executable
// binaries and internal/ holds the packages they wire together: configuration,
// database, the websocket hub, and the HTTP routes.
package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"

	"github.com/codeclash/codeclash-api/internal/config"
	"github.com/codeclash/codeclash-api/internal/database"
	"github.com/codeclash/codeclash-api/internal/game"
	"github.com/codeclash/codeclash-api/internal/handlers"
	"github.com/codeclash/codeclash-api/internal/mail"
	"github.com/codeclash/codeclash-api/internal/middleware"
	"github.com/codeclash/codeclash-api/internal/models"
	"github.com/codeclash/codeclash-api/internal/websocket"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	if cfg.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Apply pending SQL migrations so the schema is current before the first
	// request comes in.
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// The hub fans live game updates out to connected spectators; it runs its
	// event loop in its own goroutine for the life of the process.
	hub := websocket.NewHub()
	go hub.Run()

	// Development delivery: verification mail lands in the log.
	// TODO: swap in an SMTP mailer once the provider account exists.
	var mailer mail.Mailer = &mail.LogMailer{Log: log}

	ranker := game.StatsRanker{}

	app := fiber.New(fiber.Config{
		AppName: "Code Clash API",
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontURL,
		AllowCredentials: true,
	}))

	app.Get("/health", handlers.HealthCheck)

	// Named middleware so the route table below reads as a permission table.
	authed := middleware.Auth(cfg, db)
	user := middleware.MinimumRole(models.UserRoleUser)
	moderator := middleware.MinimumRole(models.UserRoleModerator)
	admin := middleware.MinimumRole(models.UserRoleAdmin)

	auth := app.Group("/auth")
	auth.Post("/register", handlers.Register(cfg, db, mailer))
	auth.Get("/verify", handlers.Verify(cfg, db))
	auth.Post("/login", handlers.Login(cfg, db))
	auth.Post("/logout", authed, handlers.Logout(cfg, db))
	auth.Post("/reverify", authed, handlers.Reverify(cfg, db, mailer))
	auth.Get("/user", authed, handlers.Me())

	// Static paths are registered before the :id routes so "latest" never
	// parses as an id.
	schedules := app.Group("/schedules")
	schedules.Get("/", handlers.GetSchedules(db))
	schedules.Get("/latest", handlers.GetLatestSchedule(db))
	schedules.Get("/status/:status", handlers.GetSchedulesByStatus(db))
	schedules.Get("/:id", handlers.GetSchedule(db))
	schedules.Post("/", authed, moderator, handlers.CreateSchedule(db))
	schedules.Patch("/:id", authed, moderator, handlers.UpdateSchedule(db))
	schedules.Post("/:id/activate", authed, moderator, handlers.ActivateSchedule(db))
	schedules.Post("/:id/end", authed, moderator, handlers.EndSchedule(db))
	schedules.Delete("/:id", authed, moderator, handlers.DeleteSchedule(db))
	schedules.Post("/:id/applications", authed, user, handlers.ApplyToSchedule(db))
	schedules.Get("/:id/applications", authed, moderator, handlers.GetScheduleApplications(db))

	games := app.Group("/games")
	games.Get("/", handlers.GetGames(db))
	games.Get("/latest", handlers.GetLatestGame(db))
	games.Get("/active", handlers.GetActiveGame(db))
	games.Get("/season/:season", handlers.GetGamesBySeason(db))
	games.Get("/:id", handlers.GetGame(db))
	games.Post("/", authed, moderator, handlers.CreateGame(db))
	games.Patch("/:id", authed, moderator, handlers.UpdateGame(db, hub))
	games.Post("/:id/activate", authed, moderator, handlers.ActivateGame(db, hub))
	games.Post("/:id/end", authed, moderator, handlers.EndGame(db))
	games.Delete("/:id", authed, admin, handlers.DeleteGame(db))
	games.Post("/:id/auto-assign", authed, moderator, handlers.AutoAssignGame(db, ranker))

	users := app.Group("/users")
	users.Get("/:id/profile", handlers.GetUserProfile(db))
	users.Patch("/:id/profile", authed, handlers.UpdateUserProfile(db))
	users.Get("/:id/stats", handlers.GetUserStats(db))

	app.Get("/search/users", authed, moderator, handlers.SearchUsers(db))

	log.WithField("port", cfg.Port).Info("starting server")
	log.Fatal(app.Listen(":" + cfg.Port))
}
