// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/curatarr/internal/models"
)

func TestUpsertUserInsertsAndUpdates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	lastSeen := int64(1700000000)
	u := &models.User{
		UserID:            42,
		Username:          "alice",
		FriendlyName:      "Alice",
		Email:             "alice@example.com",
		IsActive:          true,
		TotalDuration:     "3 days 2 hrs",
		LastSeenUnix:      &lastSeen,
		LastSeenFormatted: "2 weeks ago",
		LastSeenDate:      "21:04, Sat 14 Mar",
		LastWatched:       "Foo (S01E01) - Pilot",
	}

	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}

	got, err := db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Username != "alice" || got.LastWatched != "Foo (S01E01) - Pilot" {
		t.Errorf("unexpected user after insert: %+v", got)
	}

	// Second upsert with changed fields must update in place
	u.FriendlyName = "Alice B"
	u.LastWatched = "Sister Act"
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("second UpsertUser failed: %v", err)
	}

	got, err = db.GetUser(ctx, 42)
	if err != nil {
		t.Fatalf("GetUser after update failed: %v", err)
	}
	if got.FriendlyName != "Alice B" || got.LastWatched != "Sister Act" {
		t.Errorf("upsert did not update fields: %+v", got)
	}

	users, err := db.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user after double upsert, got %d", len(users))
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUser(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminFlagSurvivesUpsert(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &models.User{UserID: 7, Username: "bob"}
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if err := db.SetAdmin(ctx, 7, true); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}

	// Sync refresh must not clear the locally managed flag
	if err := db.UpsertUser(ctx, u); err != nil {
		t.Fatalf("refresh UpsertUser failed: %v", err)
	}

	admins, err := db.GetAdmins(ctx)
	if err != nil {
		t.Fatalf("GetAdmins failed: %v", err)
	}
	if len(admins) != 1 || admins[0].UserID != 7 {
		t.Fatalf("expected user 7 as sole admin, got %+v", admins)
	}

	if err := db.SetAdmin(ctx, 7, false); err != nil {
		t.Fatalf("clearing admin failed: %v", err)
	}
	admins, err = db.GetAdmins(ctx)
	if err != nil {
		t.Fatalf("GetAdmins after clear failed: %v", err)
	}
	if len(admins) != 0 {
		t.Errorf("expected no admins after clear, got %d", len(admins))
	}
}

func TestSetAdminUnknownUser(t *testing.T) {
	db := setupTestDB(t)

	err := db.SetAdmin(context.Background(), 12345, true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}
