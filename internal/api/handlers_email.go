// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/mailer"
)

// Automated email categories toggleable through the settings endpoints.
var automatedEmailKeys = map[string]bool{
	"newly_added":       true,
	"requested_content": true,
}

// SendTestEmail delivers one message to the posted address to verify SMTP
// settings, bypassing subscription checks.
func (s *Server) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	var body struct {
		To string `json:"to"`
	}
	if err := decodeBody(r, &body); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if err := mailer.ValidateEmail(body.To); err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := s.mailer.SendTest(r.Context(), body.To); err != nil {
		logging.Error().Err(err).Str("to", body.To).Msg("Test email failed")
		rw.Error(http.StatusBadGateway, ErrCodeProvider, "Test email failed: "+err.Error())
		return
	}
	rw.Success(map[string]string{"to": body.To})
}

// SendBulkEmail streams a bulk delivery as Server-Sent Events: one start
// event, one progress or error event per recipient, and a final complete
// event. The list field names the unsubscribe list to honor.
func (s *Server) SendBulkEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		List    string `json:"list"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := decodeBody(r, &body); err != nil {
		NewResponseWriter(w).BadRequest("Invalid request body: " + err.Error())
		return
	}
	if body.Subject == "" || body.Body == "" {
		NewResponseWriter(w).BadRequest("Subject and body are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		NewResponseWriter(w).Error(http.StatusInternalServerError, ErrCodeInternal, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := make(chan mailer.ProgressEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		// SendBulk closes events; errors have already been reported on the
		// stream as error events.
		_ = s.mailer.SendBulk(r.Context(), body.List, body.Subject, body.Body, events)
	}()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			logging.Error().Err(err).Msg("Failed to encode progress event")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}
	<-done
}

// GetEmailSetting reports whether one automated email category is enabled.
func (s *Server) GetEmailSetting(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	key := chi.URLParam(r, "key")
	if !automatedEmailKeys[key] {
		rw.NotFound("Unknown automated email setting")
		return
	}

	enabled, err := s.db.GetAutomatedEmailSetting(r.Context(), key)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{"key": key, "enabled": enabled})
}

// SetEmailSetting enables or disables one automated email category.
func (s *Server) SetEmailSetting(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)

	key := chi.URLParam(r, "key")
	if !automatedEmailKeys[key] {
		rw.NotFound("Unknown automated email setting")
		return
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeBody(r, &body); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}

	if err := s.db.SetAutomatedEmailSetting(r.Context(), key, body.Enabled); err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(map[string]interface{}{"key": key, "enabled": body.Enabled})
}
