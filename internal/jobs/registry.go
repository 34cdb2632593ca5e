// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package jobs tracks fire-and-forget background tasks.
//
// A started job runs on its own goroutine and is identified by a generated
// uuid. Callers poll job status; no result or error is retained beyond the
// running/finished flag. Finished jobs stay queryable for a retention
// window and are then evicted so the registry cannot grow without bound.
package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusRunning  Status = "running"
	StatusFinished Status = "finished"
)

// Job is a snapshot of one tracked task.
type Job struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     Status `json:"status"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt *int64 `json:"finished_at"`
}

// Registry tracks background jobs in memory.
type Registry struct {
	mu        sync.Mutex
	jobs      map[string]*Job
	retention time.Duration
	now       func() time.Time
}

// NewRegistry creates a registry that keeps finished jobs queryable for
// the given retention window.
func NewRegistry(retention time.Duration) *Registry {
	return &Registry{
		jobs:      make(map[string]*Job),
		retention: retention,
		now:       time.Now,
	}
}

// Start launches fn on a new goroutine and returns the job id immediately.
// A panic in fn is recovered and logged; the job still transitions to
// finished so pollers are never stuck on a dead task.
func (r *Registry) Start(name string, fn func()) string {
	id := uuid.New().String()

	r.mu.Lock()
	r.evictLocked()
	r.jobs[id] = &Job{
		ID:        id,
		Name:      name,
		Status:    StatusRunning,
		StartedAt: r.now().Unix(),
	}
	r.mu.Unlock()

	metrics.JobsStarted.WithLabelValues(name).Inc()
	metrics.JobsRunning.Inc()
	logging.Info().Str("job_id", id).Str("job", name).Msg("Background job started")

	go func() {
		defer r.finish(id, name)
		fn()
	}()

	return id
}

func (r *Registry) finish(id, name string) {
	if rec := recover(); rec != nil {
		logging.Error().Str("job_id", id).Str("job", name).
			Interface("panic", rec).Msg("Background job panicked")
	}

	r.mu.Lock()
	if j, ok := r.jobs[id]; ok {
		finished := r.now().Unix()
		j.Status = StatusFinished
		j.FinishedAt = &finished
	}
	r.mu.Unlock()

	metrics.JobsRunning.Dec()
	logging.Info().Str("job_id", id).Str("job", name).Msg("Background job finished")
}

// Get returns a snapshot of the job with the given id. Finished jobs past
// the retention window are gone; ok is false for unknown ids.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked()
	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// List returns snapshots of all tracked jobs.
func (r *Registry) List() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked()
	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out
}

// evictLocked drops finished jobs older than the retention window.
// Callers must hold r.mu.
func (r *Registry) evictLocked() {
	cutoff := r.now().Add(-r.retention).Unix()
	for id, j := range r.jobs {
		if j.Status == StatusFinished && j.FinishedAt != nil && *j.FinishedAt <= cutoff {
			delete(r.jobs, id)
		}
	}
}
