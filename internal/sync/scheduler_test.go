// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/curatarr/internal/config"
)

func TestSchedulerDisabledBlocksUntilShutdown(t *testing.T) {
	m, _ := setupManager(t, nil, nil)
	s := NewScheduler(m, &config.SyncConfig{ScheduleEnabled: false, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("Serve returned before shutdown: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestSchedulerRunsImmediatelyWhenEnabled(t *testing.T) {
	m, db := setupManager(t, tautulliFixture(), nil)
	s := NewScheduler(m, &config.SyncConfig{ScheduleEnabled: true, Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	// First pass runs before the first tick; poll for its results.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := db.GetUser(ctx, 10); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Initial sync pass did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestSchedulerString(t *testing.T) {
	s := NewScheduler(nil, &config.SyncConfig{Interval: time.Hour})
	if s.String() != "sync-scheduler" {
		t.Errorf("String() = %q", s.String())
	}
}
