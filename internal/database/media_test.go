// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/curatarr/internal/models"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestCreateMovieConvergesOnSemanticKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.CreateMovie(ctx, &models.Movie{Title: "Sister Act", Year: intPtr(1992)})
	if err != nil {
		t.Fatalf("CreateMovie failed: %v", err)
	}

	// Same (title, year) from another source must land on the same row
	second, err := db.CreateMovie(ctx, &models.Movie{
		Title:  "Sister Act",
		Year:   intPtr(1992),
		TMDBID: int64Ptr(2612),
	})
	if err != nil {
		t.Fatalf("second CreateMovie failed: %v", err)
	}
	if second.MovieID != first.MovieID {
		t.Errorf("expected convergence on movie %d, got %d", first.MovieID, second.MovieID)
	}

	movies, err := db.GetMovies(ctx)
	if err != nil {
		t.Fatalf("GetMovies failed: %v", err)
	}
	if len(movies) != 1 {
		t.Errorf("expected 1 movie, got %d", len(movies))
	}
}

func TestCreateMovieConvergesOnRatingKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.CreateMovie(ctx, &models.Movie{
		Title:     "Heat",
		Year:      intPtr(1995),
		RatingKey: int64Ptr(5100),
	})
	if err != nil {
		t.Fatalf("CreateMovie failed: %v", err)
	}

	// Same rating key with a differently cased title must not fork a row
	second, err := db.CreateMovie(ctx, &models.Movie{
		Title:     "HEAT",
		Year:      intPtr(1995),
		RatingKey: int64Ptr(5100),
	})
	if err != nil {
		t.Fatalf("second CreateMovie failed: %v", err)
	}
	if second.MovieID != first.MovieID {
		t.Errorf("expected rating key conflict to converge, got %d and %d", first.MovieID, second.MovieID)
	}
	if second.Title != "Heat" {
		t.Errorf("canonical title overwritten: %q", second.Title)
	}
}

func TestBackfillMovieNeverOverwrites(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	m, err := db.CreateMovie(ctx, &models.Movie{Title: "Alien", Year: intPtr(1979), TMDBID: int64Ptr(348)})
	if err != nil {
		t.Fatalf("CreateMovie failed: %v", err)
	}

	// Backfill fills missing fields but keeps the first-written tmdb_id
	err = db.BackfillMovie(ctx, &models.Movie{
		MovieID:   m.MovieID,
		RatingKey: int64Ptr(777),
		TMDBID:    int64Ptr(99999),
		Poster:    strPtr("/alien.jpg"),
	})
	if err != nil {
		t.Fatalf("BackfillMovie failed: %v", err)
	}

	got, err := db.GetMovie(ctx, m.MovieID)
	if err != nil {
		t.Fatalf("GetMovie failed: %v", err)
	}
	if got.RatingKey == nil || *got.RatingKey != 777 {
		t.Errorf("rating key not backfilled: %+v", got.RatingKey)
	}
	if got.TMDBID == nil || *got.TMDBID != 348 {
		t.Errorf("existing tmdb_id overwritten: %+v", got.TMDBID)
	}
	if got.Poster == nil || *got.Poster != "/alien.jpg" {
		t.Errorf("poster not backfilled: %+v", got.Poster)
	}
}

func TestShowSeasonEpisodeUniqueness(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	show, err := db.CreateShow(ctx, &models.Show{Title: "Foo", Year: intPtr(2019)})
	if err != nil {
		t.Fatalf("CreateShow failed: %v", err)
	}

	s1, err := db.CreateSeason(ctx, &models.Season{ShowID: show.ShowID, SeasonNum: 1})
	if err != nil {
		t.Fatalf("CreateSeason failed: %v", err)
	}
	s1again, err := db.CreateSeason(ctx, &models.Season{ShowID: show.ShowID, SeasonNum: 1, RatingKey: int64Ptr(300)})
	if err != nil {
		t.Fatalf("second CreateSeason failed: %v", err)
	}
	if s1again.SeasonID != s1.SeasonID {
		t.Errorf("season (show, num) did not converge: %d vs %d", s1.SeasonID, s1again.SeasonID)
	}

	e1, err := db.CreateEpisode(ctx, &models.Episode{SeasonID: s1.SeasonID, ShowID: show.ShowID, Number: 1, Name: "Pilot"})
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}
	e1again, err := db.CreateEpisode(ctx, &models.Episode{SeasonID: s1.SeasonID, ShowID: show.ShowID, Number: 1, Name: "Pilot"})
	if err != nil {
		t.Fatalf("second CreateEpisode failed: %v", err)
	}
	if e1again.EpisodeID != e1.EpisodeID {
		t.Errorf("episode (season, number, name) did not converge: %d vs %d", e1.EpisodeID, e1again.EpisodeID)
	}

	episodes, err := db.GetEpisodes(ctx, s1.SeasonID)
	if err != nil {
		t.Fatalf("GetEpisodes failed: %v", err)
	}
	if len(episodes) != 1 {
		t.Errorf("expected 1 episode, got %d", len(episodes))
	}
}

func TestBackfillSeasonFillsMissingOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	show, err := db.CreateShow(ctx, &models.Show{Title: "Bar"})
	if err != nil {
		t.Fatalf("CreateShow failed: %v", err)
	}
	season, err := db.CreateSeason(ctx, &models.Season{ShowID: show.ShowID, SeasonNum: 2, EpisodeCount: intPtr(10)})
	if err != nil {
		t.Fatalf("CreateSeason failed: %v", err)
	}

	err = db.BackfillSeason(ctx, &models.Season{
		SeasonID:     season.SeasonID,
		EpisodeCount: intPtr(99),
		AddedAt:      int64Ptr(1650000000),
	})
	if err != nil {
		t.Fatalf("BackfillSeason failed: %v", err)
	}

	got, err := db.GetSeason(ctx, show.ShowID, 2)
	if err != nil {
		t.Fatalf("GetSeason failed: %v", err)
	}
	if got.EpisodeCount == nil || *got.EpisodeCount != 10 {
		t.Errorf("episode count overwritten: %+v", got.EpisodeCount)
	}
	if got.AddedAt == nil || *got.AddedAt != 1650000000 {
		t.Errorf("added_at not backfilled: %+v", got.AddedAt)
	}
}

func TestGetShowByTitleAmbiguous(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateShow(ctx, &models.Show{Title: "Doctor Who", Year: intPtr(1963)}); err != nil {
		t.Fatalf("CreateShow failed: %v", err)
	}
	if _, err := db.CreateShow(ctx, &models.Show{Title: "Doctor Who", Year: intPtr(2005)}); err != nil {
		t.Fatalf("second CreateShow failed: %v", err)
	}

	// Two shows share the title: a year-less lookup must refuse to guess
	_, err := db.GetShowByTitle(ctx, "Doctor Who")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for ambiguous title, got %v", err)
	}
}
