// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/identity"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
)

// ErrSyncInProgress is returned when a sync pass for the same source is
// already running. The caller should retrigger later, not queue.
var ErrSyncInProgress = errors.New("sync already in progress for this source")

// Source labels used in metrics and logs.
const (
	SourceWatchHistory = "watch_history"
	SourceRequests     = "requests"
)

// Manager orchestrates sync passes from the external providers into the
// entity store.
//
// Passes for the same source are mutually exclusive via TryLock guards;
// passes for different sources may overlap. The store's uniqueness
// constraints remain the backstop for any writers racing beneath the
// guard.
type Manager struct {
	db        *database.DB
	resolver  *identity.Resolver
	tautulli  *TautulliClient
	overseerr *OverseerrClient
	tmdb      *TMDBClient

	watchMu   sync.Mutex
	requestMu sync.Mutex
}

// NewManager wires the provider clients to the store. tmdb may be nil
// when the catalog provider is not configured.
func NewManager(db *database.DB, resolver *identity.Resolver, tautulli *TautulliClient, overseerr *OverseerrClient, tmdb *TMDBClient) *Manager {
	return &Manager{
		db:        db,
		resolver:  resolver,
		tautulli:  tautulli,
		overseerr: overseerr,
		tmdb:      tmdb,
	}
}

// Tautulli exposes the watch-history client for connectivity checks and
// poster proxying.
func (m *Manager) Tautulli() *TautulliClient { return m.tautulli }

// Overseerr exposes the request client for connectivity checks.
func (m *Manager) Overseerr() *OverseerrClient { return m.overseerr }

// SyncWatchHistory runs one full watch-history ingestion pass: users
// first, then per-user movie and episode watches, then a season metadata
// pass. Returns ErrSyncInProgress when a pass is already running.
func (m *Manager) SyncWatchHistory(ctx context.Context) error {
	if !m.watchMu.TryLock() {
		metrics.SyncRejected.WithLabelValues(SourceWatchHistory).Inc()
		return ErrSyncInProgress
	}
	defer m.watchMu.Unlock()

	start := time.Now()
	processed, err := m.syncWatchHistory(ctx)
	metrics.RecordSyncPass(SourceWatchHistory, time.Since(start), processed, err)

	if err != nil {
		logging.Error().Err(err).Int("processed", processed).
			Dur("elapsed", time.Since(start)).Msg("Watch history sync failed")
		return err
	}
	logging.Info().Int("processed", processed).
		Dur("elapsed", time.Since(start)).Msg("Watch history sync finished")
	return nil
}

// SyncRequests runs one request ingestion pass against the persisted
// high-water mark. Returns ErrSyncInProgress when a pass is already
// running.
func (m *Manager) SyncRequests(ctx context.Context) error {
	if !m.requestMu.TryLock() {
		metrics.SyncRejected.WithLabelValues(SourceRequests).Inc()
		return ErrSyncInProgress
	}
	defer m.requestMu.Unlock()

	start := time.Now()
	processed, err := m.syncRequests(ctx)
	metrics.RecordSyncPass(SourceRequests, time.Since(start), processed, err)

	if err != nil {
		logging.Error().Err(err).Int("processed", processed).
			Dur("elapsed", time.Since(start)).Msg("Request sync failed")
		return err
	}
	logging.Info().Int("processed", processed).
		Dur("elapsed", time.Since(start)).Msg("Request sync finished")
	return nil
}
