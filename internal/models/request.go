// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package models

// Request status values follow the request provider's numeric codes.
const (
	RequestStatusPending   = 1
	RequestStatusApproved  = 2
	RequestStatusDeclined  = 3
	RequestStatusAvailable = 4
)

// MovieRequest represents a row in the movie_requests table. Requests are
// keyed by the provider's request id when it supplies one; otherwise
// (MovieID, RequestedAt, UserID) identifies the request across syncs.
type MovieRequest struct {
	RequestID         int64  `json:"request_id"`
	MovieID           int64  `json:"movie_id"`
	ExternalRequestID *int64 `json:"external_request_id"`
	RequestedAt       int64  `json:"requested_at"`
	Status            int    `json:"status"`
	UpdatedAt         *int64 `json:"updated_at"`
	UserID            int64  `json:"user_id"`
}

// SeasonRequest represents a row in the season_requests table. A provider
// request covering several seasons expands to one SeasonRequest per season.
// ShowID is denormalized the same way episodes carry it.
type SeasonRequest struct {
	RequestID         int64  `json:"request_id"`
	SeasonID          int64  `json:"season_id"`
	ShowID            int64  `json:"show_id"`
	ExternalRequestID *int64 `json:"external_request_id"`
	RequestedAt       int64  `json:"requested_at"`
	Status            int    `json:"status"`
	UpdatedAt         *int64 `json:"updated_at"`
	UserID            int64  `json:"user_id"`
}
