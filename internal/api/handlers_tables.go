// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curatarr/internal/database"
)

// ListTables returns the tables readable through the generic table
// endpoint.
func (s *Server) ListTables(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w).Success(database.AllowedTables())
}

// GetTable returns every row of one allowlisted table. Table and column
// names come from the store's allowlist, never from the request, so this
// cannot be steered into arbitrary SQL.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	rows, err := s.db.GetTableRows(r.Context(), chi.URLParam(r, "table"))
	if err != nil {
		if errors.Is(err, database.ErrUnknownTable) {
			rw.NotFound("Unknown table")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(rows)
}
