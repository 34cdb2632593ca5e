// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/curatarr/internal/metrics"
	"github.com/tomtom215/curatarr/internal/models"
)

// RecordMovieWatch inserts a movie watch if the identical tuple is not
// already stored. Returns true when a new row was written. A watch with
// started >= stopped fails validation with ErrInvalidWatch before touching
// the database; callers drop the record and continue the batch.
func (db *DB) RecordMovieWatch(ctx context.Context, w *models.MovieWatch) (bool, error) {
	if w.Started >= w.Stopped {
		return false, fmt.Errorf("movie watch for user %d: %w", w.UserID, ErrInvalidWatch)
	}

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO movie_watches (user_id, movie_id, started, stopped, pause_duration)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		w.UserID, w.MovieID, w.Started, w.Stopped, w.PauseDuration)
	metrics.RecordDBQuery("insert", "movie_watches", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to record movie watch: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check movie watch insert: %w", err)
	}
	return affected > 0, nil
}

// RecordEpisodeWatch inserts an episode watch with the same semantics as
// RecordMovieWatch.
func (db *DB) RecordEpisodeWatch(ctx context.Context, w *models.EpisodeWatch) (bool, error) {
	if w.Started >= w.Stopped {
		return false, fmt.Errorf("episode watch for user %d: %w", w.UserID, ErrInvalidWatch)
	}

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO episode_watches (user_id, episode_id, started, stopped, pause_duration)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`,
		w.UserID, w.EpisodeID, w.Started, w.Stopped, w.PauseDuration)
	metrics.RecordDBQuery("insert", "episode_watches", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to record episode watch: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check episode watch insert: %w", err)
	}
	return affected > 0, nil
}

// CountMovieWatches returns the number of stored movie watches.
func (db *DB) CountMovieWatches(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movie_watches`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count movie watches: %w", err)
	}
	return count, nil
}

// CountEpisodeWatches returns the number of stored episode watches.
func (db *DB) CountEpisodeWatches(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM episode_watches`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count episode watches: %w", err)
	}
	return count, nil
}

// GetMovieWatches returns a user's movie watches, most recent first.
func (db *DB) GetMovieWatches(ctx context.Context, userID int64) ([]*models.MovieWatch, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT watch_id, user_id, movie_id, started, stopped, pause_duration
		FROM movie_watches WHERE user_id = ? ORDER BY stopped DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movie watches for user %d: %w", userID, err)
	}
	defer rows.Close()

	var watches []*models.MovieWatch
	for rows.Next() {
		var w models.MovieWatch
		if err := rows.Scan(&w.WatchID, &w.UserID, &w.MovieID, &w.Started, &w.Stopped, &w.PauseDuration); err != nil {
			return nil, fmt.Errorf("failed to scan movie watch: %w", err)
		}
		watches = append(watches, &w)
	}
	return watches, rows.Err()
}

// GetEpisodeWatches returns a user's episode watches, most recent first.
func (db *DB) GetEpisodeWatches(ctx context.Context, userID int64) ([]*models.EpisodeWatch, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT watch_id, user_id, episode_id, started, stopped, pause_duration
		FROM episode_watches WHERE user_id = ? ORDER BY stopped DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query episode watches for user %d: %w", userID, err)
	}
	defer rows.Close()

	var watches []*models.EpisodeWatch
	for rows.Next() {
		var w models.EpisodeWatch
		if err := rows.Scan(&w.WatchID, &w.UserID, &w.EpisodeID, &w.Started, &w.Stopped, &w.PauseDuration); err != nil {
			return nil, fmt.Errorf("failed to scan episode watch: %w", err)
		}
		watches = append(watches, &w)
	}
	return watches, rows.Err()
}
