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
	"time"

	"github.com/tomtom215/curatarr/internal/metrics"
	"github.com/tomtom215/curatarr/internal/models"
)

// UpsertUser inserts or updates a user row. Users are keyed by the
// provider's user id, so every sync refreshes the full row in place.
// The is_admin flag is managed locally and preserved across upserts.
func (db *DB) UpsertUser(ctx context.Context, u *models.User) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (
			user_id, username, friendly_name, email, is_active,
			total_duration, last_seen_unix, last_seen_formatted, last_seen_date, last_watched
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			username = excluded.username,
			friendly_name = excluded.friendly_name,
			email = excluded.email,
			is_active = excluded.is_active,
			total_duration = excluded.total_duration,
			last_seen_unix = excluded.last_seen_unix,
			last_seen_formatted = excluded.last_seen_formatted,
			last_seen_date = excluded.last_seen_date,
			last_watched = excluded.last_watched`,
		u.UserID, u.Username, u.FriendlyName, u.Email, u.IsActive,
		u.TotalDuration, u.LastSeenUnix, u.LastSeenFormatted, u.LastSeenDate, u.LastWatched)
	metrics.RecordDBQuery("upsert", "users", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.UserID, err)
	}
	return nil
}

// GetUser returns one user by id, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT user_id, username, friendly_name, email, is_active, is_admin,
		       total_duration, last_seen_unix, last_seen_formatted, last_seen_date, last_watched
		FROM users WHERE user_id = ?`, userID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return u, nil
}

// GetUsers returns all users ordered by most recently seen first.
func (db *DB) GetUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, username, friendly_name, email, is_active, is_admin,
		       total_duration, last_seen_unix, last_seen_formatted, last_seen_date, last_watched
		FROM users
		ORDER BY COALESCE(last_seen_unix, 0) DESC, user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetAdmins returns the users with the admin flag set.
func (db *DB) GetAdmins(ctx context.Context) ([]*models.User, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_id, username, friendly_name, email, is_active, is_admin,
		       total_duration, last_seen_unix, last_seen_formatted, last_seen_date, last_watched
		FROM users WHERE is_admin ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetAdmin sets or clears the admin flag for a user.
// Returns ErrNotFound when the user does not exist.
func (db *DB) SetAdmin(ctx context.Context, userID int64, admin bool) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE user_id = ?`, admin, userID)
	if err != nil {
		return fmt.Errorf("failed to set admin flag for user %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check admin update for user %d: %w", userID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	err := s.Scan(&u.UserID, &u.Username, &u.FriendlyName, &u.Email, &u.IsActive, &u.IsAdmin,
		&u.TotalDuration, &u.LastSeenUnix, &u.LastSeenFormatted, &u.LastSeenDate, &u.LastWatched)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
