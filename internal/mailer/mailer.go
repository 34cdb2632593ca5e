// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package mailer sends notification email over SMTP to active users who
// have not opted out of a category. Bulk sends report per-recipient
// progress through a channel; the admin surface relays those events to
// the browser as server-sent events.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
	"github.com/tomtom215/curatarr/internal/models"
)

// Progress event types streamed during a bulk send.
const (
	EventStart    = "start"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// ProgressEvent is one step of a bulk send, shaped for the SSE stream.
type ProgressEvent struct {
	Type      string `json:"type"`
	Total     int    `json:"total,omitempty"`
	Sent      int    `json:"sent,omitempty"`
	Failed    int    `json:"failed,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Error     string `json:"error,omitempty"`
}

// sendFunc delivers one built message; swapped out in tests.
type sendFunc func(ctx context.Context, to, msg string) error

// Mailer delivers email through the configured SMTP relay.
type Mailer struct {
	cfg     *config.SMTPConfig
	db      *database.DB
	timeout time.Duration
	send    sendFunc
}

// New creates a Mailer reading recipients from db.
func New(cfg *config.SMTPConfig, db *database.DB) *Mailer {
	m := &Mailer{
		cfg:     cfg,
		db:      db,
		timeout: 30 * time.Second,
	}
	m.send = m.sendSMTP
	return m
}

// ValidateEmail checks the minimal shape of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid email address format: %s", email)
	}
	if !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email domain: %s", parts[1])
	}
	return nil
}

// SendTest sends a single message to one address, bypassing subscription
// checks. Used by the admin surface to verify SMTP settings.
func (m *Mailer) SendTest(ctx context.Context, to string) error {
	if !m.cfg.Configured() {
		return fmt.Errorf("smtp is not configured")
	}
	if err := ValidateEmail(to); err != nil {
		return err
	}

	msg := m.buildMessage(to, "Curatarr test email",
		"<p>This is a test email from Curatarr. SMTP delivery is working.</p>")
	if err := m.send(ctx, to, msg); err != nil {
		metrics.EmailsSent.WithLabelValues("error").Inc()
		return err
	}
	metrics.EmailsSent.WithLabelValues("ok").Inc()
	return nil
}

// Recipients returns the active users with a usable email address who have
// not unsubscribed from the category.
func (m *Mailer) Recipients(ctx context.Context, category string) ([]*models.User, error) {
	users, err := m.db.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	var out []*models.User
	for _, u := range users {
		if !u.IsActive || ValidateEmail(u.Email) != nil {
			continue
		}
		skip, err := m.db.IsUnsubscribed(ctx, category, u.UserID)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// SendBulk emails every subscribed recipient of the category and reports
// progress on events. The channel receives one start event, one progress
// or error event per recipient, and a final complete event; it is closed
// before returning. A failed recipient does not stop the run.
func (m *Mailer) SendBulk(ctx context.Context, category, subject, bodyHTML string, events chan<- ProgressEvent) error {
	defer close(events)

	if !m.cfg.Configured() {
		events <- ProgressEvent{Type: EventError, Error: "smtp is not configured"}
		return fmt.Errorf("smtp is not configured")
	}

	recipients, err := m.Recipients(ctx, category)
	if err != nil {
		events <- ProgressEvent{Type: EventError, Error: err.Error()}
		return err
	}

	events <- ProgressEvent{Type: EventStart, Total: len(recipients)}

	sent, failed := 0, 0
	for _, u := range recipients {
		msg := m.buildMessage(u.Email, subject, bodyHTML)
		if err := m.send(ctx, u.Email, msg); err != nil {
			failed++
			metrics.EmailsSent.WithLabelValues("error").Inc()
			logging.Warn().Err(err).Str("recipient", u.Email).Msg("Email delivery failed")
			events <- ProgressEvent{Type: EventError, Recipient: u.Email, Sent: sent, Failed: failed, Error: err.Error()}
			continue
		}
		sent++
		metrics.EmailsSent.WithLabelValues("ok").Inc()
		events <- ProgressEvent{Type: EventProgress, Recipient: u.Email, Sent: sent, Failed: failed, Total: len(recipients)}
	}

	events <- ProgressEvent{Type: EventComplete, Sent: sent, Failed: failed, Total: len(recipients)}
	logging.Info().Str("category", category).Int("sent", sent).Int("failed", failed).Msg("Bulk email finished")
	return nil
}

// buildMessage constructs the raw message with headers.
func (m *Mailer) buildMessage(to, subject, bodyHTML string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: Curatarr <%s>\r\n", m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(bodyHTML)
	msg.WriteString("\r\n")
	return msg.String()
}

// sendSMTP performs one SMTP conversation for a single recipient.
func (m *Mailer) sendSMTP(ctx context.Context, to, msg string) error {
	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	// Opportunistic STARTTLS when the relay offers it
	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: m.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// Quit failures after a committed DATA are not delivery failures
	_ = client.Quit()
	return nil
}
