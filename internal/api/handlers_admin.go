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
)

// Users returns every stored media server account with their denormalized
// watch stats.
func (s *Server) Users(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	users, err := s.db.GetUsers(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(users)
}

// ListAdmins returns the accounts flagged as dashboard admins.
func (s *Server) ListAdmins(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	admins, err := s.db.GetAdmins(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(admins)
}

// SetAdmin flags one user as admin.
func (s *Server) SetAdmin(w http.ResponseWriter, r *http.Request) {
	s.setAdminFlag(w, r, true)
}

// RemoveAdmin clears one user's admin flag.
func (s *Server) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	s.setAdminFlag(w, r, false)
}

func (s *Server) setAdminFlag(w http.ResponseWriter, r *http.Request, admin bool) {
	rw := NewResponseWriter(w)

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		rw.BadRequest("Invalid user id")
		return
	}

	if err := s.db.SetAdmin(r.Context(), userID, admin); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("Unknown user")
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{"user_id": userID, "is_admin": admin})
}
