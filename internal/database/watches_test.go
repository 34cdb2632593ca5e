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

func TestRecordMovieWatchDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, &models.User{UserID: 1, Username: "alice"}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	movie, err := db.CreateMovie(ctx, &models.Movie{Title: "Sister Act", Year: intPtr(1992)})
	if err != nil {
		t.Fatalf("CreateMovie failed: %v", err)
	}

	w := &models.MovieWatch{
		UserID:        1,
		MovieID:       movie.MovieID,
		Started:       1700000000,
		Stopped:       1700005000,
		PauseDuration: 120,
	}

	created, err := db.RecordMovieWatch(ctx, w)
	if err != nil {
		t.Fatalf("RecordMovieWatch failed: %v", err)
	}
	if !created {
		t.Error("expected first watch to be created")
	}

	// Identical tuple from a re-sync is a no-op
	created, err = db.RecordMovieWatch(ctx, w)
	if err != nil {
		t.Fatalf("duplicate RecordMovieWatch failed: %v", err)
	}
	if created {
		t.Error("expected duplicate watch to be ignored")
	}

	count, err := db.CountMovieWatches(ctx)
	if err != nil {
		t.Fatalf("CountMovieWatches failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 movie watch, got %d", count)
	}

	// A different pause duration is a distinct viewing record
	w2 := *w
	w2.PauseDuration = 0
	created, err = db.RecordMovieWatch(ctx, &w2)
	if err != nil {
		t.Fatalf("RecordMovieWatch with new tuple failed: %v", err)
	}
	if !created {
		t.Error("expected distinct tuple to be created")
	}
}

func TestRecordWatchRejectsInvertedInterval(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.RecordMovieWatch(ctx, &models.MovieWatch{
		UserID:  1,
		MovieID: 1,
		Started: 1700005000,
		Stopped: 1700000000,
	})
	if !errors.Is(err, ErrInvalidWatch) {
		t.Fatalf("expected ErrInvalidWatch for started > stopped, got %v", err)
	}

	_, err = db.RecordEpisodeWatch(ctx, &models.EpisodeWatch{
		UserID:    1,
		EpisodeID: 1,
		Started:   1700000000,
		Stopped:   1700000000,
	})
	if !errors.Is(err, ErrInvalidWatch) {
		t.Fatalf("expected ErrInvalidWatch for started == stopped, got %v", err)
	}

	count, err := db.CountMovieWatches(ctx)
	if err != nil {
		t.Fatalf("CountMovieWatches failed: %v", err)
	}
	if count != 0 {
		t.Errorf("invalid watch reached the database, count=%d", count)
	}
}

func TestRecordEpisodeWatchDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	show, err := db.CreateShow(ctx, &models.Show{Title: "Foo", Year: intPtr(2019)})
	if err != nil {
		t.Fatalf("CreateShow failed: %v", err)
	}
	season, err := db.CreateSeason(ctx, &models.Season{ShowID: show.ShowID, SeasonNum: 1})
	if err != nil {
		t.Fatalf("CreateSeason failed: %v", err)
	}
	episode, err := db.CreateEpisode(ctx, &models.Episode{SeasonID: season.SeasonID, ShowID: show.ShowID, Number: 1, Name: "Pilot"})
	if err != nil {
		t.Fatalf("CreateEpisode failed: %v", err)
	}

	w := &models.EpisodeWatch{
		UserID:    3,
		EpisodeID: episode.EpisodeID,
		Started:   1700000000,
		Stopped:   1700002000,
	}
	for i := 0; i < 2; i++ {
		if _, err := db.RecordEpisodeWatch(ctx, w); err != nil {
			t.Fatalf("RecordEpisodeWatch run %d failed: %v", i, err)
		}
	}

	count, err := db.CountEpisodeWatches(ctx)
	if err != nil {
		t.Fatalf("CountEpisodeWatches failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 episode watch after re-ingestion, got %d", count)
	}

	watches, err := db.GetEpisodeWatches(ctx, 3)
	if err != nil {
		t.Fatalf("GetEpisodeWatches failed: %v", err)
	}
	if len(watches) != 1 || watches[0].EpisodeID != episode.EpisodeID {
		t.Errorf("unexpected watches: %+v", watches)
	}
}
