// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/models"
)

// DuckDB in-memory instances are memory-hungry; run one store at a time.
var testDBSemaphore = make(chan struct{}, 1)

func setupMailer(t *testing.T) (*Mailer, *database.DB) {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})

	cfg := &config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "curatarr@example.com"}
	return New(cfg, db), db
}

func seedUser(t *testing.T, db *database.DB, id int64, email string, active bool) {
	t.Helper()
	err := db.UpsertUser(context.Background(), &models.User{
		UserID:   id,
		Username: email,
		Email:    email,
		IsActive: active,
	})
	if err != nil {
		t.Fatalf("Failed to seed user %d: %v", id, err)
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"alice@example.com", "a.b+c@mail.example.org"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("Expected %q to validate: %v", email, err)
		}
	}

	invalid := []string{"", "alice", "alice@", "@example.com", "alice@localhost", "a@b@c.com"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("Expected %q to be rejected", email)
		}
	}
}

func TestRecipientsFiltering(t *testing.T) {
	m, db := setupMailer(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice@example.com", true)
	seedUser(t, db, 2, "bob@example.com", true)
	seedUser(t, db, 3, "", true)                   // no email
	seedUser(t, db, 4, "carol@example.com", false) // inactive

	// Bob has opted out of this category.
	if err := db.ReplaceUnsubscribeList(ctx, "newsletter_unsubscribe_list", []int64{2}); err != nil {
		t.Fatalf("Failed to set unsubscribe list: %v", err)
	}

	recipients, err := m.Recipients(ctx, "newsletter_unsubscribe_list")
	if err != nil {
		t.Fatalf("Recipients failed: %v", err)
	}
	if len(recipients) != 1 {
		t.Fatalf("Expected 1 recipient, got %d", len(recipients))
	}
	if recipients[0].Email != "alice@example.com" {
		t.Errorf("Unexpected recipient %s", recipients[0].Email)
	}
}

func TestSendBulkEmitsProgressEvents(t *testing.T) {
	m, db := setupMailer(t)
	ctx := context.Background()

	seedUser(t, db, 1, "alice@example.com", true)
	seedUser(t, db, 2, "bob@example.com", true)
	seedUser(t, db, 3, "carol@example.com", true)

	var sentTo []string
	m.send = func(_ context.Context, to, msg string) error {
		if to == "bob@example.com" {
			return errors.New("mailbox unavailable")
		}
		if !strings.Contains(msg, "Subject: New on the server") {
			t.Errorf("Message missing subject header: %q", msg)
		}
		sentTo = append(sentTo, to)
		return nil
	}

	events := make(chan ProgressEvent, 16)
	if err := m.SendBulk(ctx, "newsletter_unsubscribe_list", "New on the server", "<p>hi</p>", events); err != nil {
		t.Fatalf("SendBulk failed: %v", err)
	}

	var got []ProgressEvent
	for ev := range events {
		got = append(got, ev)
	}

	// start + 3 recipients + complete
	if len(got) != 5 {
		t.Fatalf("Expected 5 events, got %d: %+v", len(got), got)
	}
	if got[0].Type != EventStart || got[0].Total != 3 {
		t.Errorf("Unexpected start event: %+v", got[0])
	}
	last := got[len(got)-1]
	if last.Type != EventComplete || last.Sent != 2 || last.Failed != 1 {
		t.Errorf("Unexpected complete event: %+v", last)
	}

	errorSeen := false
	for _, ev := range got[1 : len(got)-1] {
		if ev.Type == EventError {
			errorSeen = true
			if ev.Recipient != "bob@example.com" {
				t.Errorf("Error event for wrong recipient: %+v", ev)
			}
		}
	}
	if !errorSeen {
		t.Error("Expected an error event for the failed recipient")
	}
	if len(sentTo) != 2 {
		t.Errorf("Expected 2 deliveries, got %v", sentTo)
	}
}

func TestSendBulkUnconfigured(t *testing.T) {
	m, _ := setupMailer(t)
	m.cfg = &config.SMTPConfig{}

	events := make(chan ProgressEvent, 4)
	if err := m.SendBulk(context.Background(), "newsletter_unsubscribe_list", "s", "b", events); err == nil {
		t.Fatal("Expected error for unconfigured SMTP")
	}

	ev, ok := <-events
	if !ok || ev.Type != EventError {
		t.Errorf("Expected an error event, got %+v (open=%v)", ev, ok)
	}
	if _, open := <-events; open {
		t.Error("Expected events channel to be closed")
	}
}

func TestSendTestValidatesRecipient(t *testing.T) {
	m, _ := setupMailer(t)
	m.send = func(context.Context, string, string) error { return nil }

	if err := m.SendTest(context.Background(), "not-an-email"); err == nil {
		t.Error("Expected invalid address to be rejected")
	}
	if err := m.SendTest(context.Background(), "admin@example.com"); err != nil {
		t.Errorf("Expected test send to succeed: %v", err)
	}
}
