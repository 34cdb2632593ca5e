// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package tmdb defines response types for the metadata provider's v3 API,
// trimmed to the detail lookups the poster cache and identity resolver use.
package tmdb

// MovieDetails represents the /movie/{id} detail response. ReleaseDate is
// "YYYY-MM-DD"; PosterPath is a CDN-relative path like "/abc123.jpg".
type MovieDetails struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
}

// TvDetails represents the /tv/{id} detail response.
type TvDetails struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	FirstAirDate string   `json:"first_air_date"`
	PosterPath   string   `json:"poster_path"`
	Seasons      []Season `json:"seasons"`
}

type Season struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}
