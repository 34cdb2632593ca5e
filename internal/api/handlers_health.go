// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"net/http"
)

// Health reports service liveness plus store reachability. A failing
// store ping answers 503 so orchestrators restart or reroute.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	if err := s.db.Ping(r.Context()); err != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeDatabase, "Database unreachable")
		return
	}
	rw.Success(map[string]string{"status": "healthy"})
}
