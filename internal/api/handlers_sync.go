// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/sync"
)

// TriggerWatchHistorySync starts a watch-history sync job and returns its
// id for polling. A trigger while a pass is already running still gets a
// job; that job finishes immediately after logging the rejection.
func (s *Server) TriggerWatchHistorySync(w http.ResponseWriter, r *http.Request) {
	s.triggerSync(w, sync.SourceWatchHistory, s.manager.SyncWatchHistory)
}

// TriggerRequestSync starts a request sync job and returns its id.
func (s *Server) TriggerRequestSync(w http.ResponseWriter, r *http.Request) {
	s.triggerSync(w, sync.SourceRequests, s.manager.SyncRequests)
}

func (s *Server) triggerSync(w http.ResponseWriter, source string, pass func(context.Context) error) {
	rw := NewResponseWriter(w)

	// Jobs outlive the triggering request; the pass gets its own context.
	id := s.jobs.Start(source+"_sync", func() {
		if err := pass(context.Background()); err != nil {
			if errors.Is(err, sync.ErrSyncInProgress) {
				logging.Warn().Str("source", source).Msg("Triggered sync rejected, pass already running")
				return
			}
			logging.Error().Err(err).Str("source", source).Msg("Triggered sync failed")
		}
	})

	rw.Accepted(map[string]string{"job_id": id})
}

// GetJob returns one job's status snapshot.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	job, ok := s.jobs.Get(chi.URLParam(r, "id"))
	if !ok {
		rw.NotFound("Unknown job id")
		return
	}
	rw.Success(job)
}

// ListJobs returns every tracked job.
func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w).Success(s.jobs.List())
}
