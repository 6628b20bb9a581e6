// Package config handles loading runtime configuration for the Code Clash API.
// Configuration values are read from environment variables rather than being
// hardcoded, so the same binary can run in dev, staging, and production with
// nothing but an environment swap.
package config

import (
	"os"

	// godotenv reads a .env file and loads its key=value pairs into the process
	// environment. Convenient in development; in production real env vars are
	// set by the deployment platform and the missing file is simply ignored.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port         string // TCP port the HTTP server listens on (e.g. "8080")
	DatabaseURL  string // Postgres connection string — required
	JWTSecret    string // HMAC secret for signing session tokens — required
	CookieDomain string // Domain attribute for the session cookie; empty for host-only
	FrontURL     string // Frontend base URL used in verification mail links
	Env          string // "development", "staging", or "production"
}

// Load reads configuration from environment variables and returns a populated
// Config. The godotenv error is intentionally discarded: a missing .env file
// is the normal case outside local development.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	frontURL := os.Getenv("FRONT_URL")
	if frontURL == "" {
		frontURL = "http://localhost:3000"
	}

	return &Config{
		Port:         port,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		FrontURL:     frontURL,
		Env:          env,
	}
}
