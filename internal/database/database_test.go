// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/curatarr/internal/config"
)

// testDBSemaphore limits concurrent database creation to prevent resource
// exhaustion when many tests run in parallel. DuckDB CGO calls can hang
// under heavy concurrent load, so database access is fully serialized.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database. The semaphore is held
// for the entire test lifecycle (released via t.Cleanup) so only one test
// has an active DuckDB connection at a time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

func TestNewInMemory(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestSchemaCreated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// All allowlisted tables must exist and be readable
	for _, table := range AllowedTables() {
		if _, err := db.GetTableRows(ctx, table); err != nil {
			t.Errorf("table %q not readable after init: %v", table, err)
		}
	}
}

func TestSchemaVersionStartsAtZero(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetCurrentSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected schema version 0 with no migrations, got %d", version)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	// Re-running schema creation against an initialized database must not fail
	if err := db.initialize(); err != nil {
		t.Fatalf("second initialize failed: %v", err)
	}
}

func TestGetTableRowsUnknownTable(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetTableRows(context.Background(), "schema_migrations; DROP TABLE users")
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable for non-allowlisted table, got %v", err)
	}
}
