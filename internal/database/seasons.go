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

const seasonColumns = `season_id, show_id, season_num, episode_count, rating_key, added_at`

// GetSeason returns the season identified by (show, season number), or
// ErrNotFound.
func (db *DB) GetSeason(ctx context.Context, showID int64, seasonNum int) (*models.Season, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE show_id = ? AND season_num = ?`,
		showID, seasonNum)
	return db.scanSeasonRow(row, fmt.Sprintf("show=%d season=%d", showID, seasonNum))
}

// GetSeasonByRatingKey returns the season holding the given media server
// rating key, or ErrNotFound.
func (db *DB) GetSeasonByRatingKey(ctx context.Context, ratingKey int64) (*models.Season, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE rating_key = ?`, ratingKey)
	return db.scanSeasonRow(row, fmt.Sprintf("rating_key=%d", ratingKey))
}

// GetSeasonByID returns one season by internal id, or ErrNotFound.
func (db *DB) GetSeasonByID(ctx context.Context, seasonID int64) (*models.Season, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE season_id = ?`, seasonID)
	return db.scanSeasonRow(row, fmt.Sprintf("season_id=%d", seasonID))
}

// CreateSeason inserts a season and returns the stored row, converging on
// the existing (show_id, season_num) row under concurrent writers.
func (db *DB) CreateSeason(ctx context.Context, s *models.Season) (*models.Season, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO seasons (show_id, season_num, episode_count, rating_key, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING `+seasonColumns,
		s.ShowID, s.SeasonNum, s.EpisodeCount, s.RatingKey, s.AddedAt)

	created, err := db.scanSeasonRow(row, fmt.Sprintf("show=%d season=%d", s.ShowID, s.SeasonNum))
	metrics.RecordDBQuery("insert", "seasons", time.Since(start), nil)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to insert season %d of show %d: %w", s.SeasonNum, s.ShowID, err)
	}

	if s.RatingKey != nil {
		if existing, err := db.GetSeasonByRatingKey(ctx, *s.RatingKey); err == nil {
			return existing, nil
		}
	}
	return db.GetSeason(ctx, s.ShowID, s.SeasonNum)
}

// BackfillSeason fills in metadata the stored row is missing; fields
// already set keep their first-written value.
func (db *DB) BackfillSeason(ctx context.Context, s *models.Season) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE seasons SET
			episode_count = COALESCE(episode_count, ?),
			rating_key = COALESCE(rating_key, ?),
			added_at = COALESCE(added_at, ?)
		WHERE season_id = ?`,
		s.EpisodeCount, s.RatingKey, s.AddedAt, s.SeasonID)
	if err != nil {
		return fmt.Errorf("failed to backfill season %d: %w", s.SeasonID, err)
	}
	return nil
}

// GetSeasons returns all seasons of a show ordered by season number.
func (db *DB) GetSeasons(ctx context.Context, showID int64) ([]*models.Season, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+seasonColumns+` FROM seasons WHERE show_id = ? ORDER BY season_num`, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons of show %d: %w", showID, err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		var s models.Season
		if err := rows.Scan(&s.SeasonID, &s.ShowID, &s.SeasonNum, &s.EpisodeCount, &s.RatingKey, &s.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, &s)
	}
	return seasons, rows.Err()
}

func (db *DB) scanSeasonRow(row *sql.Row, desc string) (*models.Season, error) {
	var s models.Season
	err := row.Scan(&s.SeasonID, &s.ShowID, &s.SeasonNum, &s.EpisodeCount, &s.RatingKey, &s.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan season (%s): %w", desc, err)
	}
	return &s, nil
}
