// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package tautulli

// History represents the API response from Tautulli's get_history endpoint
type History struct {
	Response HistoryResponse `json:"response"`
}

type HistoryResponse struct {
	Result  string      `json:"result"`
	Message *string     `json:"message,omitempty"`
	Data    HistoryData `json:"data"`
}

type HistoryData struct {
	RecordsFiltered int             `json:"recordsFiltered"`
	RecordsTotal    int             `json:"recordsTotal"`
	TotalDuration   string          `json:"total_duration"`
	FilterDuration  string          `json:"filter_duration"`
	Data            []HistoryRecord `json:"data"`
}

// HistoryRecord represents a single playback history record from Tautulli's
// get_history endpoint, trimmed to the fields watch ingestion consumes.
//
// Title hierarchy depends on media_type:
//   - movie: title and full_title carry the movie name, year is set
//   - episode: title is the episode name, parent_title the season
//     (e.g. "Season 6"), grandparent_title the show, media_index the
//     episode number and parent_media_index the season number
//
// Note: Duration is in SECONDS (unlike get_activity which returns milliseconds)
type HistoryRecord struct {
	Date    int64 `json:"date"`
	Started int64 `json:"started"`
	Stopped int64 `json:"stopped"`

	// User information
	// Pointer type allows distinguishing null from zero value in Tautulli API responses
	UserID       *int   `json:"user_id"` // Nullable - may be null in edge cases
	User         string `json:"user"`
	FriendlyName string `json:"friendly_name"`
	Email        string `json:"email"`

	// Media identification
	// Pointer type allows distinguishing null from zero value in Tautulli API responses
	MediaType            string  `json:"media_type"` // "movie", "episode"
	RatingKey            *int    `json:"rating_key"` // Numeric ID (Tautulli returns as integer, can be null)
	ParentRatingKey      *int    `json:"parent_rating_key"`
	GrandparentRatingKey *int    `json:"grandparent_rating_key"`
	MediaIndex           *int    `json:"media_index"`        // Episode number (nil for movies)
	ParentMediaIndex     *int    `json:"parent_media_index"` // Season number (nil for movies)
	Title                string  `json:"title"`
	ParentTitle          *string `json:"parent_title"`      // Season title (nil for movies)
	GrandparentTitle     *string `json:"grandparent_title"` // Show title (nil for movies)
	FullTitle            string  `json:"full_title"`
	Year                 *int    `json:"year"` // Nullable - null for media without year data

	// Playback metrics
	// Pointer type allows distinguishing null from zero value in Tautulli API responses
	Duration        *int `json:"duration"`       // Seconds (nullable)
	PausedCounter   *int `json:"paused_counter"` // Total paused seconds (nullable)
	PercentComplete *int `json:"percent_complete"`
}
