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

const showColumns = `show_id, title, year, rating_key, tvdb_id, poster, tmdb_poster`

// GetShowByRatingKey returns the show holding the given media server
// rating key, or ErrNotFound.
func (db *DB) GetShowByRatingKey(ctx context.Context, ratingKey int64) (*models.Show, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE rating_key = ?`, ratingKey)
	return db.scanShowRow(row, fmt.Sprintf("rating_key=%d", ratingKey))
}

// GetShowByTVDBID returns the show holding the given catalog id, or ErrNotFound.
func (db *DB) GetShowByTVDBID(ctx context.Context, tvdbID int64) (*models.Show, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE tvdb_id = ?`, tvdbID)
	return db.scanShowRow(row, fmt.Sprintf("tvdb_id=%d", tvdbID))
}

// GetShowByTitleYear returns the show matching the semantic key, or
// ErrNotFound. A nil year only matches rows whose year is also unknown.
func (db *DB) GetShowByTitleYear(ctx context.Context, title string, year *int) (*models.Show, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE title = ? AND year IS NOT DISTINCT FROM ?`,
		title, year)
	return db.scanShowRow(row, fmt.Sprintf("title=%q", title))
}

// GetShowByTitle returns the single show with the given title regardless of
// year, or ErrNotFound. When several shows share the title the lookup is
// ambiguous and ErrNotFound is returned; callers fall through to other
// matching strategies rather than guess.
func (db *DB) GetShowByTitle(ctx context.Context, title string) (*models.Show, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE title = ? LIMIT 2`, title)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows by title %q: %w", title, err)
	}
	defer rows.Close()

	var matches []*models.Show
	for rows.Next() {
		var s models.Show
		if err := rows.Scan(&s.ShowID, &s.Title, &s.Year, &s.RatingKey, &s.TVDBID, &s.Poster, &s.TMDBPoster); err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		matches = append(matches, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, ErrNotFound
	}
	return matches[0], nil
}

// GetShow returns one show by internal id, or ErrNotFound.
func (db *DB) GetShow(ctx context.Context, showID int64) (*models.Show, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE show_id = ?`, showID)
	return db.scanShowRow(row, fmt.Sprintf("show_id=%d", showID))
}

// CreateShow inserts a show and returns the stored row, converging on the
// existing row when a uniqueness conflict means another writer got there
// first.
func (db *DB) CreateShow(ctx context.Context, s *models.Show) (*models.Show, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO shows (title, year, rating_key, tvdb_id, poster, tmdb_poster)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING `+showColumns,
		s.Title, s.Year, s.RatingKey, s.TVDBID, s.Poster, s.TMDBPoster)

	created, err := db.scanShowRow(row, fmt.Sprintf("title=%q", s.Title))
	metrics.RecordDBQuery("insert", "shows", time.Since(start), nil)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to insert show %q: %w", s.Title, err)
	}

	if s.RatingKey != nil {
		if existing, err := db.GetShowByRatingKey(ctx, *s.RatingKey); err == nil {
			return existing, nil
		}
	}
	if s.TVDBID != nil {
		if existing, err := db.GetShowByTVDBID(ctx, *s.TVDBID); err == nil {
			return existing, nil
		}
	}
	return db.GetShowByTitleYear(ctx, s.Title, s.Year)
}

// BackfillShow fills in external keys and metadata the stored row is
// missing; fields already set keep their first-written value.
func (db *DB) BackfillShow(ctx context.Context, s *models.Show) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE shows SET
			year = COALESCE(year, ?),
			rating_key = COALESCE(rating_key, ?),
			tvdb_id = COALESCE(tvdb_id, ?),
			poster = COALESCE(poster, ?),
			tmdb_poster = COALESCE(tmdb_poster, ?)
		WHERE show_id = ?`,
		s.Year, s.RatingKey, s.TVDBID, s.Poster, s.TMDBPoster, s.ShowID)
	if err != nil {
		return fmt.Errorf("failed to backfill show %d: %w", s.ShowID, err)
	}
	return nil
}

// GetShows returns all shows ordered by title.
func (db *DB) GetShows(ctx context.Context) ([]*models.Show, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+showColumns+` FROM shows ORDER BY title, year`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	var shows []*models.Show
	for rows.Next() {
		var s models.Show
		if err := rows.Scan(&s.ShowID, &s.Title, &s.Year, &s.RatingKey, &s.TVDBID, &s.Poster, &s.TMDBPoster); err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		shows = append(shows, &s)
	}
	return shows, rows.Err()
}

func (db *DB) scanShowRow(row *sql.Row, desc string) (*models.Show, error) {
	var s models.Show
	err := row.Scan(&s.ShowID, &s.Title, &s.Year, &s.RatingKey, &s.TVDBID, &s.Poster, &s.TMDBPoster)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan show (%s): %w", desc, err)
	}
	return &s, nil
}
