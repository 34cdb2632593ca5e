// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package tautulli defines response types for the watch-history provider's
// API v2. Every endpoint wraps its payload in {"response": {"result",
// "message", "data"}}; result is "success" or "error".
//
// Numeric fields that the API can return as null use pointer types so
// callers can distinguish absent from zero.
package tautulli
