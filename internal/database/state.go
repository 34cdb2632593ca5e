// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// sync_state keys. The high-water mark records the newest request
// timestamp already processed, so request sync only walks newer records;
// the automated email keys hold admin-toggled "true"/"false" flags.
const (
	StateKeyRequestHighWaterMark  = "requests_high_water_mark"
	StateKeyEmailNewlyReleased    = "automated_email_newly_released_content"
	StateKeyEmailRequestedContent = "automated_email_requested_content"
)

// GetState returns the value stored under key. The second return value is
// false when the key has never been written.
func (db *DB) GetState(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read sync state %q: %w", key, err)
	}
	return value, true, nil
}

// SetState writes a value under key, replacing any previous value.
func (db *DB) SetState(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write sync state %q: %w", key, err)
	}
	return nil
}

// GetRequestHighWaterMark returns the newest request timestamp already
// processed, or zero when no request sync has completed yet.
func (db *DB) GetRequestHighWaterMark(ctx context.Context) (int64, error) {
	value, ok, err := db.GetState(ctx, StateKeyRequestHighWaterMark)
	if err != nil || !ok {
		return 0, err
	}
	mark, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt request high-water mark %q: %w", value, err)
	}
	return mark, nil
}

// SetRequestHighWaterMark persists the newest processed request timestamp.
// Called only after a fully successful request sync pass.
func (db *DB) SetRequestHighWaterMark(ctx context.Context, mark int64) error {
	return db.SetState(ctx, StateKeyRequestHighWaterMark, strconv.FormatInt(mark, 10))
}

// GetAutomatedEmailSetting reports whether an automated email category is
// enabled. Unset keys default to false.
func (db *DB) GetAutomatedEmailSetting(ctx context.Context, key string) (bool, error) {
	value, ok, err := db.GetState(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return value == "true", nil
}

// SetAutomatedEmailSetting toggles an automated email category.
func (db *DB) SetAutomatedEmailSetting(ctx context.Context, key string, enabled bool) error {
	return db.SetState(ctx, key, strconv.FormatBool(enabled))
}
