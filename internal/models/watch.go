// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package models

// MovieWatch represents one completed viewing session of a movie.
// The tuple (UserID, MovieID, Started, Stopped, PauseDuration) is unique,
// so re-ingesting the same provider history is a no-op. Started must be
// strictly before Stopped.
type MovieWatch struct {
	WatchID       int64 `json:"watch_id"`
	UserID        int64 `json:"user_id"`
	MovieID       int64 `json:"movie_id"`
	Started       int64 `json:"started"`
	Stopped       int64 `json:"stopped"`
	PauseDuration int64 `json:"pause_duration"`
}

// EpisodeWatch represents one completed viewing session of an episode,
// with the same uniqueness and ordering rules as MovieWatch.
type EpisodeWatch struct {
	WatchID       int64 `json:"watch_id"`
	UserID        int64 `json:"user_id"`
	EpisodeID     int64 `json:"episode_id"`
	Started       int64 `json:"started"`
	Stopped       int64 `json:"stopped"`
	PauseDuration int64 `json:"pause_duration"`
}
