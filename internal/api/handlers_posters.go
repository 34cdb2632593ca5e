// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/models"
	"github.com/tomtom215/curatarr/internal/postercache"
)

// Poster serves the cached poster image for one movie or show, fetching
// and caching it on first access.
func (s *Server) Poster(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	kind := models.MediaKind(chi.URLParam(r, "kind"))
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		rw.BadRequest("Invalid media id")
		return
	}

	img, err := s.posters.Get(r.Context(), kind, id)
	if err != nil {
		switch {
		case errors.Is(err, postercache.ErrUnsupportedKind):
			rw.BadRequest("Posters exist for movies and shows only")
		case errors.Is(err, database.ErrNotFound):
			rw.NotFound("Unknown media id")
		case errors.Is(err, postercache.ErrNoPoster):
			rw.NotFound("No poster known for this item")
		default:
			logging.Error().Err(err).Str("kind", string(kind)).Int64("id", id).Msg("Poster fetch failed")
			rw.Error(http.StatusBadGateway, ErrCodeProvider, "Poster fetch failed")
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(img); err != nil {
		logging.Debug().Err(err).Msg("Poster write aborted by client")
	}
}
