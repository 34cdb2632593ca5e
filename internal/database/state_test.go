// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"testing"
)

func TestRequestHighWaterMark(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	mark, err := db.GetRequestHighWaterMark(ctx)
	if err != nil {
		t.Fatalf("GetRequestHighWaterMark failed: %v", err)
	}
	if mark != 0 {
		t.Errorf("expected zero mark before first sync, got %d", mark)
	}

	if err := db.SetRequestHighWaterMark(ctx, 1690000000); err != nil {
		t.Fatalf("SetRequestHighWaterMark failed: %v", err)
	}
	mark, err = db.GetRequestHighWaterMark(ctx)
	if err != nil {
		t.Fatalf("GetRequestHighWaterMark after set failed: %v", err)
	}
	if mark != 1690000000 {
		t.Errorf("expected mark 1690000000, got %d", mark)
	}

	// Advancing the mark replaces the previous value
	if err := db.SetRequestHighWaterMark(ctx, 1695000000); err != nil {
		t.Fatalf("advancing mark failed: %v", err)
	}
	mark, _ = db.GetRequestHighWaterMark(ctx)
	if mark != 1695000000 {
		t.Errorf("expected advanced mark, got %d", mark)
	}
}

func TestAutomatedEmailSettings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	enabled, err := db.GetAutomatedEmailSetting(ctx, StateKeyEmailNewlyReleased)
	if err != nil {
		t.Fatalf("GetAutomatedEmailSetting failed: %v", err)
	}
	if enabled {
		t.Error("expected automated emails off by default")
	}

	if err := db.SetAutomatedEmailSetting(ctx, StateKeyEmailNewlyReleased, true); err != nil {
		t.Fatalf("SetAutomatedEmailSetting failed: %v", err)
	}
	enabled, err = db.GetAutomatedEmailSetting(ctx, StateKeyEmailNewlyReleased)
	if err != nil {
		t.Fatalf("GetAutomatedEmailSetting after set failed: %v", err)
	}
	if !enabled {
		t.Error("expected setting to persist")
	}

	// The two categories are independent
	enabled, err = db.GetAutomatedEmailSetting(ctx, StateKeyEmailRequestedContent)
	if err != nil {
		t.Fatalf("GetAutomatedEmailSetting for second key failed: %v", err)
	}
	if enabled {
		t.Error("expected requested-content setting to remain off")
	}
}
