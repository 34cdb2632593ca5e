// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package overseerr

// MovieDetails represents the /movie/{tmdbId} detail response, trimmed to
// the fields identity resolution and poster lookup consume. ReleaseDate is
// "YYYY-MM-DD".
type MovieDetails struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"releaseDate"`
	PosterPath  string `json:"posterPath"`
}

// TvDetails represents the /tv/{tmdbId} detail response. FirstAirDate is
// "YYYY-MM-DD"; Seasons covers every season the provider knows about, not
// just requested ones.
type TvDetails struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	FirstAirDate string      `json:"firstAirDate"`
	PosterPath   string      `json:"posterPath"`
	Seasons      []TvSeason  `json:"seasons"`
	ExternalIDs  ExternalIDs `json:"externalIds"`
}

type TvSeason struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"seasonNumber"`
	EpisodeCount int    `json:"episodeCount"`
	AirDate      string `json:"airDate"`
}

type ExternalIDs struct {
	TvdbID *int64 `json:"tvdbId"`
	ImdbID string `json:"imdbId"`
}
