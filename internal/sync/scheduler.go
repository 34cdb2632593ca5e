// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/logging"
)

// Scheduler runs both sync passes on a fixed interval as a supervised
// service. It implements suture.Service.
//
// A pass rejected because a manual trigger already holds the source lock
// is not an error; the scheduled run simply yields and the next tick
// retries.
type Scheduler struct {
	manager  *Manager
	interval time.Duration
	enabled  bool
}

// NewScheduler creates the periodic sync service.
func NewScheduler(manager *Manager, cfg *config.SyncConfig) *Scheduler {
	return &Scheduler{
		manager:  manager,
		interval: cfg.Interval,
		enabled:  cfg.ScheduleEnabled,
	}
}

// Serve implements suture.Service. When scheduling is disabled it blocks
// until shutdown so the supervisor does not restart-loop it.
func (s *Scheduler) Serve(ctx context.Context) error {
	if !s.enabled {
		logging.Info().Msg("Scheduled sync disabled, syncs run on demand only")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().Dur("interval", s.interval).Msg("Starting sync scheduler")

	// First pass runs immediately so a fresh deployment has data before
	// the first full interval elapses.
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if err := s.manager.SyncWatchHistory(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		logging.Error().Err(err).Msg("Scheduled watch history sync failed")
	}
	if err := s.manager.SyncRequests(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
		logging.Error().Err(err).Msg("Scheduled request sync failed")
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *Scheduler) String() string {
	return "sync-scheduler"
}
