// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"net/http"
)

// ProviderStatus reports configuration and liveness for each provider.
// The request provider additionally validates its API key with a fresh
// call, since a reachable server with a revoked key still cannot sync.
func (s *Server) ProviderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tautulli := s.manager.Tautulli()
	overseerr := s.manager.Overseerr()

	status := map[string]interface{}{
		"tautulli": map[string]bool{
			"configured": tautulli.Configured(),
			"alive":      tautulli.Alive(ctx),
		},
		"overseerr": map[string]bool{
			"configured":    overseerr.Configured(),
			"alive":         overseerr.Alive(ctx),
			"api_key_valid": overseerr.ValidateAPIKey(ctx),
		},
	}
	NewResponseWriter(w).Success(status)
}
