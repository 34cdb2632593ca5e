// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Command server runs the Curatarr daemon: the sync scheduler and the
// admin HTTP API under a single supervision tree.
//
// # Configuration
//
// Configuration is read from defaults, then an optional config.yaml,
// then environment variables (highest precedence). The minimum useful
// deployment points at one provider:
//
//	TAUTULLI_URL=http://tautulli:8181 \
//	TAUTULLI_API_KEY=your-api-key \
//	DATABASE_PATH=/data/curatarr.duckdb \
//	./server
//
// Overseerr (OVERSEERR_URL, OVERSEERR_API_KEY) and TMDB (TMDB_API_TOKEN)
// are optional; passes that depend on an unconfigured provider are
// skipped rather than failing.
//
// # Shutdown
//
// SIGINT and SIGTERM trigger a graceful shutdown: the supervisor tree
// stops both layers, in-flight HTTP requests get the configured drain
// window, and the database is checkpointed on close.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/curatarr/internal/api"
	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/httpcache"
	"github.com/tomtom215/curatarr/internal/identity"
	"github.com/tomtom215/curatarr/internal/jobs"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/mailer"
	"github.com/tomtom215/curatarr/internal/postercache"
	"github.com/tomtom215/curatarr/internal/supervisor"
	"github.com/tomtom215/curatarr/internal/sync"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Exiting after failure")
		os.Exit(1)
	}
}

// run holds the real main so deferred cleanup executes before the
// process exit code is decided.
func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Bool("tautulli_configured", cfg.Tautulli.Configured()).
		Bool("overseerr_configured", cfg.Overseerr.Configured()).
		Bool("smtp_configured", cfg.SMTP.Configured()).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Curatarr")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	cache, err := httpcache.New(&cfg.Cache)
	if err != nil {
		return fmt.Errorf("open HTTP cache: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing HTTP cache")
		}
	}()

	tautulli := sync.NewTautulliClient(&cfg.Tautulli, cache)
	overseerr := sync.NewOverseerrClient(&cfg.Overseerr, cache)
	tmdb := sync.NewTMDBClient(&cfg.TMDB, cache)

	resolver := identity.NewResolver(db)
	manager := sync.NewManager(db, resolver, tautulli, overseerr, tmdb)

	posters, err := postercache.New(&cfg.Posters, db, tautulli, tmdb)
	if err != nil {
		return fmt.Errorf("create poster cache: %w", err)
	}

	registry := jobs.NewRegistry(cfg.Jobs.Retention)
	m := mailer.New(&cfg.SMTP, db)

	server := api.NewServer(&cfg.Server, db, manager, registry, m, posters)

	// Bridge zerolog to slog for supervisor event reporting.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddSyncService(sync.NewScheduler(manager, &cfg.Sync))
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Supervisor tree starting")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
