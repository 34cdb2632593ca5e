// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package models

// User represents a media server account as stored in the users table.
// The primary key is the watch-history provider's user id, so users are
// upserted on every sync rather than created with generated ids.
//
// The LastSeen*/LastWatched fields are denormalized aggregates refreshed
// during user sync:
//   - TotalDuration: provider-formatted total watch time (e.g. "4 days 3 hrs")
//   - LastSeenUnix: epoch seconds of the most recent watch stop
//   - LastSeenFormatted: humanized relative time (e.g. "3 weeks ago")
//   - LastSeenDate: short absolute form (e.g. "21:04, Sat 14 Mar")
//   - LastWatched: title of the most recent item, with "(S06E16) -" inserted
//     after the show name for episodes
type User struct {
	UserID            int64  `json:"user_id"`
	Username          string `json:"username"`
	FriendlyName      string `json:"friendly_name"`
	Email             string `json:"email"`
	IsActive          bool   `json:"is_active"`
	IsAdmin           bool   `json:"is_admin"`
	TotalDuration     string `json:"total_duration"`
	LastSeenUnix      *int64 `json:"last_seen_unix"`
	LastSeenFormatted string `json:"last_seen_formatted"`
	LastSeenDate      string `json:"last_seen_date"`
	LastWatched       string `json:"last_watched"`
}
