// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/jobs"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/mailer"
	"github.com/tomtom215/curatarr/internal/postercache"
	"github.com/tomtom215/curatarr/internal/sync"
)

// Server is the administrative HTTP surface, run as a supervised service.
type Server struct {
	cfg     *config.ServerConfig
	db      *database.DB
	manager *sync.Manager
	jobs    *jobs.Registry
	mailer  *mailer.Mailer
	posters *postercache.Cache
}

// NewServer wires the HTTP surface to its collaborators.
func NewServer(cfg *config.ServerConfig, db *database.DB, manager *sync.Manager, registry *jobs.Registry, m *mailer.Mailer, posters *postercache.Cache) *Server {
	return &Server{
		cfg:     cfg,
		db:      db,
		manager: manager,
		jobs:    registry,
		mailer:  m,
		posters: posters,
	}
}

// Routes builds the chi router with the full middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/health", s.Health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.Limit(s.cfg.RateLimitReqs, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Use(metricsMiddleware)

		r.Post("/sync/watch-history", s.TriggerWatchHistorySync)
		r.Post("/sync/requests", s.TriggerRequestSync)
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)

		r.Get("/users", s.Users)
		r.Get("/admins", s.ListAdmins)
		r.Put("/admins/{userID}", s.SetAdmin)
		r.Delete("/admins/{userID}", s.RemoveAdmin)

		r.Get("/unsubscribe", s.ListUnsubscribeLists)
		r.Get("/unsubscribe/{list}", s.GetUnsubscribeList)
		r.Put("/unsubscribe/{list}", s.ReplaceUnsubscribeList)

		r.Get("/tables", s.ListTables)
		r.Get("/tables/{table}", s.GetTable)

		r.Get("/providers/status", s.ProviderStatus)

		r.Get("/posters/{kind}/{id}", s.Poster)

		r.Post("/email/test", s.SendTestEmail)
		r.Post("/email/send", s.SendBulkEmail)
		r.Get("/email/settings/{key}", s.GetEmailSetting)
		r.Put("/email/settings/{key}", s.SetEmailSetting)
	})

	return r
}

// Serve implements suture.Service: it runs the HTTP server until the
// context is canceled, then shuts down gracefully within the configured
// timeout.
func (s *Server) Serve(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *Server) String() string {
	return "http-server"
}
