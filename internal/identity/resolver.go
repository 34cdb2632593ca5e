// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package identity resolves provider records to stored media entities.
//
// Both providers describe the same library without sharing identifiers:
// the watch-history source speaks rating keys, the request source speaks
// catalog ids. Resolution tries identifiers in falling order of
// reliability:
//
//  1. external key (rating key, then catalog id)
//  2. semantic key (title plus year; show plus season number for seasons)
//  3. title alone, only when exactly one stored row matches and the year
//     on at least one side is unknown
//  4. create a new row carrying whatever fields are known
//
// A successful match backfills external keys and metadata the stored row
// is missing; canonical fields already set are never overwritten. Records
// without enough identity to match or create are unresolved; callers skip
// them and continue the batch.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/models"
)

// ErrUnresolved marks a record whose identity fields are insufficient to
// match or create an entity. Sync passes skip these records.
var ErrUnresolved = errors.New("identity unresolved")

// Resolver maps provider-side identities onto stored entities.
type Resolver struct {
	db *database.DB

	// Serializes find-or-create within the process. The schema's
	// uniqueness constraints remain the backstop for writers on other
	// connections.
	mu sync.Mutex
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(db *database.DB) *Resolver {
	return &Resolver{db: db}
}

// MovieIdentity carries everything a source knows about a movie.
type MovieIdentity struct {
	Title      string
	Year       *int
	RatingKey  *int64
	TMDBID     *int64
	Poster     *string
	TMDBPoster *string
	AddedAt    *int64
}

// ShowIdentity carries everything a source knows about a show.
type ShowIdentity struct {
	Title      string
	Year       *int
	RatingKey  *int64
	TVDBID     *int64
	Poster     *string
	TMDBPoster *string
}

// ResolveMovie finds or creates the movie a record refers to and
// backfills any fields the stored row is missing.
func (r *Resolver) ResolveMovie(ctx context.Context, id MovieIdentity) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	movie, err := r.matchMovie(ctx, id)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if movie == nil {
		if id.Title == "" {
			return nil, fmt.Errorf("movie with no title or external key: %w", ErrUnresolved)
		}
		return r.db.CreateMovie(ctx, &models.Movie{
			Title:      id.Title,
			Year:       id.Year,
			RatingKey:  id.RatingKey,
			TMDBID:     id.TMDBID,
			Poster:     id.Poster,
			TMDBPoster: id.TMDBPoster,
			AddedAt:    id.AddedAt,
		})
	}

	if err := r.db.BackfillMovie(ctx, &models.Movie{
		MovieID:    movie.MovieID,
		Year:       id.Year,
		RatingKey:  id.RatingKey,
		TMDBID:     id.TMDBID,
		Poster:     id.Poster,
		TMDBPoster: id.TMDBPoster,
		AddedAt:    id.AddedAt,
	}); err != nil {
		return nil, err
	}
	return r.db.GetMovie(ctx, movie.MovieID)
}

func (r *Resolver) matchMovie(ctx context.Context, id MovieIdentity) (*models.Movie, error) {
	if id.RatingKey != nil {
		if m, err := r.db.GetMovieByRatingKey(ctx, *id.RatingKey); err == nil {
			return m, nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	if id.TMDBID != nil {
		if m, err := r.db.GetMovieByTMDBID(ctx, *id.TMDBID); err == nil {
			return m, nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	if id.Title == "" {
		return nil, database.ErrNotFound
	}
	if m, err := r.db.GetMovieByTitleYear(ctx, id.Title, id.Year); err == nil {
		return m, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	return nil, database.ErrNotFound
}

// ResolveShow finds or creates the show a record refers to. When the
// exact (title, year) key misses, a single stored show with the same
// title still matches as long as the year on one side is unknown; two
// known, differing years are two different shows.
func (r *Resolver) ResolveShow(ctx context.Context, id ShowIdentity) (*models.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	show, err := r.matchShow(ctx, id)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if show == nil {
		if id.Title == "" {
			return nil, fmt.Errorf("show with no title or external key: %w", ErrUnresolved)
		}
		return r.db.CreateShow(ctx, &models.Show{
			Title:      id.Title,
			Year:       id.Year,
			RatingKey:  id.RatingKey,
			TVDBID:     id.TVDBID,
			Poster:     id.Poster,
			TMDBPoster: id.TMDBPoster,
		})
	}

	if err := r.db.BackfillShow(ctx, &models.Show{
		ShowID:     show.ShowID,
		Year:       id.Year,
		RatingKey:  id.RatingKey,
		TVDBID:     id.TVDBID,
		Poster:     id.Poster,
		TMDBPoster: id.TMDBPoster,
	}); err != nil {
		return nil, err
	}
	return r.db.GetShow(ctx, show.ShowID)
}

func (r *Resolver) matchShow(ctx context.Context, id ShowIdentity) (*models.Show, error) {
	if id.RatingKey != nil {
		if s, err := r.db.GetShowByRatingKey(ctx, *id.RatingKey); err == nil {
			return s, nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	if id.TVDBID != nil {
		if s, err := r.db.GetShowByTVDBID(ctx, *id.TVDBID); err == nil {
			return s, nil
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	if id.Title == "" {
		return nil, database.ErrNotFound
	}
	if s, err := r.db.GetShowByTitleYear(ctx, id.Title, id.Year); err == nil {
		return s, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	// Title-only fallback: safe only when it cannot conflate two shows
	// with the same name from different years
	s, err := r.db.GetShowByTitle(ctx, id.Title)
	if err != nil {
		return nil, err
	}
	if id.Year == nil || s.Year == nil || *s.Year == *id.Year {
		return s, nil
	}
	return nil, database.ErrNotFound
}

// ResolveSeason finds or creates a season of an already resolved show.
// Season numbers below zero are unresolvable provider noise.
func (r *Resolver) ResolveSeason(ctx context.Context, showID int64, seasonNum int, ratingKey *int64, episodeCount *int, addedAt *int64) (*models.Season, error) {
	if seasonNum < 0 {
		return nil, fmt.Errorf("season number %d: %w", seasonNum, ErrUnresolved)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ratingKey != nil {
		if s, err := r.db.GetSeasonByRatingKey(ctx, *ratingKey); err == nil {
			return s, r.backfillSeason(ctx, s.SeasonID, ratingKey, episodeCount, addedAt)
		} else if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}

	s, err := r.db.GetSeason(ctx, showID, seasonNum)
	if errors.Is(err, database.ErrNotFound) {
		return r.db.CreateSeason(ctx, &models.Season{
			ShowID:       showID,
			SeasonNum:    seasonNum,
			EpisodeCount: episodeCount,
			RatingKey:    ratingKey,
			AddedAt:      addedAt,
		})
	}
	if err != nil {
		return nil, err
	}
	return s, r.backfillSeason(ctx, s.SeasonID, ratingKey, episodeCount, addedAt)
}

func (r *Resolver) backfillSeason(ctx context.Context, seasonID int64, ratingKey *int64, episodeCount *int, addedAt *int64) error {
	return r.db.BackfillSeason(ctx, &models.Season{
		SeasonID:     seasonID,
		RatingKey:    ratingKey,
		EpisodeCount: episodeCount,
		AddedAt:      addedAt,
	})
}

// ResolveEpisode finds or creates an episode of an already resolved
// season. Episodes need a number and a name to be identifiable.
func (r *Resolver) ResolveEpisode(ctx context.Context, seasonID, showID int64, number int, name string, ratingKey *int64) (*models.Episode, error) {
	if name == "" || number < 0 {
		return nil, fmt.Errorf("episode %d (%q): %w", number, name, ErrUnresolved)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.db.GetEpisode(ctx, seasonID, number, name)
	if errors.Is(err, database.ErrNotFound) {
		return r.db.CreateEpisode(ctx, &models.Episode{
			SeasonID:  seasonID,
			ShowID:    showID,
			RatingKey: ratingKey,
			Number:    number,
			Name:      name,
		})
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
