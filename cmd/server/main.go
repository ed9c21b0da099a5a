// Package main is the entry point for the second-brain server.
//
// main stays minimal by design: read configuration, build the logger,
// hand everything to internal/server. All actual logic lives in the
// imported packages, which keeps the application testable without a
// process boundary.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/second-brain/internal/auth"
	"github.com/sakif/second-brain/internal/server"
)

func main() {
	// Optional .env file for local development; real deployments set the
	// environment directly, so a missing file is not an error.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the database directory exists (skip for ":memory:").
	if dir := filepath.Dir(cfg.DBPath); cfg.DBPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down via SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig reads the environment into a server.Config.
//
// Required: JWT_SECRET. Everything else has a sensible default, and a
// value that fails to parse is a startup error rather than a silent
// fallback — misconfiguration should kill the process at boot, not
// surface as odd behavior later.
func loadConfig() (server.Config, error) {
	cfg := server.Config{
		Port:       8080,
		DBPath:     "data/secondbrain.db",
		TokenTTL:   auth.DefaultTokenTTL,
		BcryptCost: auth.DefaultCost,
		AllowedOrigins: []string{
			"http://localhost:5173",
		},
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required (try: openssl rand -hex 32)")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid TOKEN_TTL %q: %w", ttlStr, err)
		}
		cfg.TokenTTL = ttl
	}

	if costStr := os.Getenv("BCRYPT_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid BCRYPT_COST %q: %w", costStr, err)
		}
		cfg.BcryptCost = cost
	}

	// Comma-separated frontend origins for CORS.
	if origins := os.Getenv("FRONTEND_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	cfg.GitHubClientID = os.Getenv("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = os.Getenv("GITHUB_CLIENT_SECRET")
	cfg.GitHubCallbackURL = os.Getenv("GITHUB_CALLBACK_URL")
	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	return cfg, nil
}
