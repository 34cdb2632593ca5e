// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package models defines the core domain types shared across the database,
// sync, and API layers: users, media entities (movies, shows, seasons,
// episodes), watch events, requests, and the standard API response envelope.
//
// Provider wire formats live in the subpackages tautulli, overseerr, and
// tmdb; types here are the normalized shapes after identity resolution.
package models
