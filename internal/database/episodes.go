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

const episodeColumns = `episode_id, season_id, show_id, rating_key, number, name`

// GetEpisode returns the episode identified by (season, number, name), or
// ErrNotFound.
func (db *DB) GetEpisode(ctx context.Context, seasonID int64, number int, name string) (*models.Episode, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE season_id = ? AND number = ? AND name = ?`,
		seasonID, number, name)
	return db.scanEpisodeRow(row, fmt.Sprintf("season=%d number=%d", seasonID, number))
}

// GetEpisodeByID returns one episode by internal id, or ErrNotFound.
func (db *DB) GetEpisodeByID(ctx context.Context, episodeID int64) (*models.Episode, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE episode_id = ?`, episodeID)
	return db.scanEpisodeRow(row, fmt.Sprintf("episode_id=%d", episodeID))
}

// CreateEpisode inserts an episode and returns the stored row, converging
// on the existing (season_id, number, name) row under concurrent writers.
func (db *DB) CreateEpisode(ctx context.Context, e *models.Episode) (*models.Episode, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO episodes (season_id, show_id, rating_key, number, name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING `+episodeColumns,
		e.SeasonID, e.ShowID, e.RatingKey, e.Number, e.Name)

	created, err := db.scanEpisodeRow(row, fmt.Sprintf("season=%d number=%d", e.SeasonID, e.Number))
	metrics.RecordDBQuery("insert", "episodes", time.Since(start), nil)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to insert episode %d (%s): %w", e.Number, e.Name, err)
	}

	return db.GetEpisode(ctx, e.SeasonID, e.Number, e.Name)
}

// GetEpisodes returns all episodes of a season ordered by number.
func (db *DB) GetEpisodes(ctx context.Context, seasonID int64) ([]*models.Episode, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes WHERE season_id = ? ORDER BY number`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes of season %d: %w", seasonID, err)
	}
	defer rows.Close()

	var episodes []*models.Episode
	for rows.Next() {
		var e models.Episode
		if err := rows.Scan(&e.EpisodeID, &e.SeasonID, &e.ShowID, &e.RatingKey, &e.Number, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, &e)
	}
	return episodes, rows.Err()
}

func (db *DB) scanEpisodeRow(row *sql.Row, desc string) (*models.Episode, error) {
	var e models.Episode
	err := row.Scan(&e.EpisodeID, &e.SeasonID, &e.ShowID, &e.RatingKey, &e.Number, &e.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan episode (%s): %w", desc, err)
	}
	return &e, nil
}
