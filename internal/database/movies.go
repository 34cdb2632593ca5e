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

const movieColumns = `movie_id, title, year, rating_key, tmdb_id, poster, tmdb_poster, added_at`

// GetMovieByRatingKey returns the movie holding the given media server
// rating key, or ErrNotFound.
func (db *DB) GetMovieByRatingKey(ctx context.Context, ratingKey int64) (*models.Movie, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE rating_key = ?`, ratingKey)
	return db.scanMovieRow(row, fmt.Sprintf("rating_key=%d", ratingKey))
}

// GetMovieByTMDBID returns the movie holding the given catalog id, or ErrNotFound.
func (db *DB) GetMovieByTMDBID(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE tmdb_id = ?`, tmdbID)
	return db.scanMovieRow(row, fmt.Sprintf("tmdb_id=%d", tmdbID))
}

// GetMovieByTitleYear returns the movie matching the semantic key, or
// ErrNotFound. A nil year only matches rows whose year is also unknown.
func (db *DB) GetMovieByTitleYear(ctx context.Context, title string, year *int) (*models.Movie, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE title = ? AND year IS NOT DISTINCT FROM ?`,
		title, year)
	return db.scanMovieRow(row, fmt.Sprintf("title=%q", title))
}

// GetMovie returns one movie by internal id, or ErrNotFound.
func (db *DB) GetMovie(ctx context.Context, movieID int64) (*models.Movie, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE movie_id = ?`, movieID)
	return db.scanMovieRow(row, fmt.Sprintf("movie_id=%d", movieID))
}

// CreateMovie inserts a movie and returns the stored row. On a uniqueness
// conflict (another writer created the same movie first, or an external
// key already exists) the insert is a no-op and the existing row is
// returned, so concurrent creators converge on one id.
func (db *DB) CreateMovie(ctx context.Context, m *models.Movie) (*models.Movie, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO movies (title, year, rating_key, tmdb_id, poster, tmdb_poster, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING `+movieColumns,
		m.Title, m.Year, m.RatingKey, m.TMDBID, m.Poster, m.TMDBPoster, m.AddedAt)

	created, err := db.scanMovieRow(row, fmt.Sprintf("title=%q", m.Title))
	metrics.RecordDBQuery("insert", "movies", time.Since(start), nil)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to insert movie %q: %w", m.Title, err)
	}

	// Conflict path: find the winning row through the same keys the
	// constraints cover
	if m.RatingKey != nil {
		if existing, err := db.GetMovieByRatingKey(ctx, *m.RatingKey); err == nil {
			return existing, nil
		}
	}
	if m.TMDBID != nil {
		if existing, err := db.GetMovieByTMDBID(ctx, *m.TMDBID); err == nil {
			return existing, nil
		}
	}
	return db.GetMovieByTitleYear(ctx, m.Title, m.Year)
}

// BackfillMovie fills in external keys and metadata that the stored row is
// missing. Canonical fields already set are never overwritten; COALESCE
// keeps the first-written value.
func (db *DB) BackfillMovie(ctx context.Context, m *models.Movie) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE movies SET
			year = COALESCE(year, ?),
			rating_key = COALESCE(rating_key, ?),
			tmdb_id = COALESCE(tmdb_id, ?),
			poster = COALESCE(poster, ?),
			tmdb_poster = COALESCE(tmdb_poster, ?),
			added_at = COALESCE(added_at, ?)
		WHERE movie_id = ?`,
		m.Year, m.RatingKey, m.TMDBID, m.Poster, m.TMDBPoster, m.AddedAt, m.MovieID)
	if err != nil {
		return fmt.Errorf("failed to backfill movie %d: %w", m.MovieID, err)
	}
	return nil
}

// GetMovies returns all movies ordered by title.
func (db *DB) GetMovies(ctx context.Context) ([]*models.Movie, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+movieColumns+` FROM movies ORDER BY title, year`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []*models.Movie
	for rows.Next() {
		var m models.Movie
		if err := rows.Scan(&m.MovieID, &m.Title, &m.Year, &m.RatingKey, &m.TMDBID, &m.Poster, &m.TMDBPoster, &m.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, &m)
	}
	return movies, rows.Err()
}

func (db *DB) scanMovieRow(row *sql.Row, desc string) (*models.Movie, error) {
	var m models.Movie
	err := row.Scan(&m.MovieID, &m.Title, &m.Year, &m.RatingKey, &m.TMDBID, &m.Poster, &m.TMDBPoster, &m.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan movie (%s): %w", desc, err)
	}
	return &m, nil
}
