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

// UpsertMovieRequest inserts or refreshes a movie request. Requests are
// identified by the provider's request id when present, otherwise by the
// (movie, requested_at, user) tuple. Status and updated_at are mutable
// and refreshed on every sync; everything else keeps its first-written
// value.
func (db *DB) UpsertMovieRequest(ctx context.Context, r *models.MovieRequest) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("upsert", "movie_requests", time.Since(start), nil)
	}()

	if r.ExternalRequestID != nil {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO movie_requests (movie_id, external_request_id, requested_at, status, updated_at, user_id)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (external_request_id) DO UPDATE SET
				status = excluded.status,
				updated_at = excluded.updated_at`,
			r.MovieID, r.ExternalRequestID, r.RequestedAt, r.Status, r.UpdatedAt, r.UserID)
		if err != nil {
			return fmt.Errorf("failed to upsert movie request %d: %w", *r.ExternalRequestID, err)
		}
		return nil
	}

	var existingID int64
	err := db.conn.QueryRowContext(ctx, `
		SELECT request_id FROM movie_requests
		WHERE external_request_id IS NULL AND movie_id = ? AND requested_at = ? AND user_id = ?`,
		r.MovieID, r.RequestedAt, r.UserID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO movie_requests (movie_id, requested_at, status, updated_at, user_id)
			VALUES (?, ?, ?, ?, ?)`,
			r.MovieID, r.RequestedAt, r.Status, r.UpdatedAt, r.UserID)
		if err != nil {
			return fmt.Errorf("failed to insert movie request: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up movie request: %w", err)
	default:
		_, err = db.conn.ExecContext(ctx,
			`UPDATE movie_requests SET status = ?, updated_at = ? WHERE request_id = ?`,
			r.Status, r.UpdatedAt, existingID)
		if err != nil {
			return fmt.Errorf("failed to refresh movie request %d: %w", existingID, err)
		}
		return nil
	}
}

// UpsertSeasonRequest inserts or refreshes one season of a provider
// request, with the same identity rules as UpsertMovieRequest but scoped
// per (request, season) since one request can cover several seasons.
func (db *DB) UpsertSeasonRequest(ctx context.Context, r *models.SeasonRequest) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("upsert", "season_requests", time.Since(start), nil)
	}()

	if r.ExternalRequestID != nil {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO season_requests (season_id, show_id, external_request_id, requested_at, status, updated_at, user_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (external_request_id, season_id) DO UPDATE SET
				status = excluded.status,
				updated_at = excluded.updated_at`,
			r.SeasonID, r.ShowID, r.ExternalRequestID, r.RequestedAt, r.Status, r.UpdatedAt, r.UserID)
		if err != nil {
			return fmt.Errorf("failed to upsert season request %d: %w", *r.ExternalRequestID, err)
		}
		return nil
	}

	var existingID int64
	err := db.conn.QueryRowContext(ctx, `
		SELECT request_id FROM season_requests
		WHERE external_request_id IS NULL AND season_id = ? AND requested_at = ? AND user_id = ?`,
		r.SeasonID, r.RequestedAt, r.UserID).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO season_requests (season_id, show_id, requested_at, status, updated_at, user_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.SeasonID, r.ShowID, r.RequestedAt, r.Status, r.UpdatedAt, r.UserID)
		if err != nil {
			return fmt.Errorf("failed to insert season request: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up season request: %w", err)
	default:
		_, err = db.conn.ExecContext(ctx,
			`UPDATE season_requests SET status = ?, updated_at = ? WHERE request_id = ?`,
			r.Status, r.UpdatedAt, existingID)
		if err != nil {
			return fmt.Errorf("failed to refresh season request %d: %w", existingID, err)
		}
		return nil
	}
}

// GetMovieRequests returns all movie requests, newest first.
func (db *DB) GetMovieRequests(ctx context.Context) ([]*models.MovieRequest, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT request_id, movie_id, external_request_id, requested_at, status, updated_at, user_id
		FROM movie_requests ORDER BY requested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.MovieRequest
	for rows.Next() {
		var r models.MovieRequest
		if err := rows.Scan(&r.RequestID, &r.MovieID, &r.ExternalRequestID, &r.RequestedAt, &r.Status, &r.UpdatedAt, &r.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan movie request: %w", err)
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}

// GetSeasonRequests returns all season requests, newest first.
func (db *DB) GetSeasonRequests(ctx context.Context) ([]*models.SeasonRequest, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT request_id, season_id, show_id, external_request_id, requested_at, status, updated_at, user_id
		FROM season_requests ORDER BY requested_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query season requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.SeasonRequest
	for rows.Next() {
		var r models.SeasonRequest
		if err := rows.Scan(&r.RequestID, &r.SeasonID, &r.ShowID, &r.ExternalRequestID, &r.RequestedAt, &r.Status, &r.UpdatedAt, &r.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan season request: %w", err)
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}
