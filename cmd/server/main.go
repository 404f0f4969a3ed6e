// Package main is the entry point for the job board API server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (internal/config: environment plus optional .env)
// 2. Create dependencies (logger, store, token service)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/jobpost-server/internal/auth"
	"github.com/sakif/jobpost-server/internal/config"
	"github.com/sakif/jobpost-server/internal/repository"
	"github.com/sakif/jobpost-server/internal/repository/mongodb"
	sqliteRepo "github.com/sakif/jobpost-server/internal/repository/sqlite"
	"github.com/sakif/jobpost-server/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// === 3. TOKEN SERVICE ===
	tokens, err := auth.NewTokenService(cfg.TokenSecret)
	if err != nil {
		logger.Error("invalid ACCESS_TOKEN_SECRET", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 4. OPEN THE STORE ===
	// One handle for the whole process, shared by every request and closed
	// by the server on shutdown.
	store, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	logger.Info("store ready", slog.String("driver", cfg.StoreDriver))

	// === 5. CREATE AND START THE SERVER ===
	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	srv := server.New(cfg, store, tokens, logger)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStore(cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		// os.MkdirAll creates the data directory if needed (like `mkdir -p`).
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		return sqliteRepo.New(cfg.SQLitePath)

	default:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
}
