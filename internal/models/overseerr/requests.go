// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package overseerr defines response types for the request provider's
// v1 API. Field names are camelCase on the wire.
package overseerr

// RequestsResponse represents the paginated /request listing.
type RequestsResponse struct {
	PageInfo PageInfo  `json:"pageInfo"`
	Results  []Request `json:"results"`
}

type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"pageSize"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

// Request is one media request. Type is "movie" or "tv"; for tv requests
// Seasons lists each requested season. CreatedAt/UpdatedAt are ISO 8601
// timestamps.
type Request struct {
	ID          int64           `json:"id"`
	Status      int             `json:"status"`
	Type        string          `json:"type"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	Media       Media           `json:"media"`
	Seasons     []SeasonRequest `json:"seasons"`
	RequestedBy User            `json:"requestedBy"`
}

// Media identifies the requested item. TmdbID and TvdbID are nullable;
// requests for media the provider has not matched carry neither.
type Media struct {
	ID        int64  `json:"id"`
	MediaType string `json:"mediaType"` // "movie" or "tv"
	TmdbID    *int64 `json:"tmdbId"`
	TvdbID    *int64 `json:"tvdbId"`
	Status    int    `json:"status"`
}

type SeasonRequest struct {
	ID           int64 `json:"id"`
	SeasonNumber int   `json:"seasonNumber"`
	Status       int   `json:"status"`
}

// User is the requesting account. PlexUsername is set for accounts
// imported from the media server; local accounts only carry Email and
// DisplayName.
type User struct {
	ID           int64   `json:"id"`
	Email        string  `json:"email"`
	PlexUsername *string `json:"plexUsername"`
	Username     *string `json:"username"`
	DisplayName  string  `json:"displayName"`
}

// Status represents the /status liveness response.
type Status struct {
	Version         string `json:"version"`
	CommitTag       string `json:"commitTag"`
	UpdateAvailable bool   `json:"updateAvailable"`
}
