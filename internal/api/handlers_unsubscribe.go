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

// ListUnsubscribeLists returns every known unsubscribe list name.
func (s *Server) ListUnsubscribeLists(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	lists, err := s.db.ListUnsubscribeCategories(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(lists)
}

// GetUnsubscribeList returns the user ids opted out of one list. Lists are
// named "<category>_unsubscribe_list"; unknown lists are empty, not 404s,
// because replacing creates them.
func (s *Server) GetUnsubscribeList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	userIDs, err := s.db.GetUnsubscribeList(r.Context(), chi.URLParam(r, "list"))
	if err != nil {
		if errors.Is(err, database.ErrInvalidCategory) {
			rw.BadRequest(err.Error())
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(userIDs)
}

// ReplaceUnsubscribeList overwrites one list's membership with the posted
// user ids. An empty list clears it.
func (s *Server) ReplaceUnsubscribeList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	var body struct {
		UserIDs []int64 `json:"user_ids"`
	}
	if err := decodeBody(r, &body); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}

	list := chi.URLParam(r, "list")
	if err := s.db.ReplaceUnsubscribeList(r.Context(), list, body.UserIDs); err != nil {
		if errors.Is(err, database.ErrInvalidCategory) {
			rw.BadRequest(err.Error())
			return
		}
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{"list": list, "user_ids": body.UserIDs})
}
