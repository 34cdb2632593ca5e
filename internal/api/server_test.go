// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package api

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/httpcache"
	"github.com/tomtom215/curatarr/internal/identity"
	"github.com/tomtom215/curatarr/internal/jobs"
	"github.com/tomtom215/curatarr/internal/mailer"
	"github.com/tomtom215/curatarr/internal/models"
	"github.com/tomtom215/curatarr/internal/postercache"
	"github.com/tomtom215/curatarr/internal/sync"
)

// DuckDB in-memory instances are memory-hungry; run one store at a time.
var testDBSemaphore = make(chan struct{}, 1)

func setupServer(t *testing.T) (*httptest.Server, *database.DB) {
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

	bdb, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	cache := httpcache.NewWithDB(bdb, 5*time.Second)
	t.Cleanup(func() {
		if err := cache.Close(); err != nil {
			t.Errorf("Failed to close cache: %v", err)
		}
	})

	// Providers stay unconfigured; triggered syncs are graceful no-ops.
	manager := sync.NewManager(db, identity.NewResolver(db),
		sync.NewTautulliClient(&config.TautulliConfig{Timeout: time.Second}, cache),
		sync.NewOverseerrClient(&config.OverseerrConfig{Timeout: time.Second}, cache),
		sync.NewTMDBClient(&config.TMDBConfig{Timeout: time.Second}, cache))

	posters, err := postercache.New(&config.PosterConfig{Dir: t.TempDir()}, db, nil, nil)
	if err != nil {
		t.Fatalf("Failed to create poster cache: %v", err)
	}

	s := NewServer(
		&config.ServerConfig{
			Host: "127.0.0.1", Port: 0,
			ReadTimeout: 5 * time.Second, ShutdownTimeout: time.Second,
			RateLimitReqs: 1000,
		},
		db, manager, jobs.NewRegistry(time.Hour),
		mailer.New(&config.SMTPConfig{}, db), posters)

	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv, db
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var env models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	return env
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Status != "success" {
		t.Errorf("Envelope status = %q, want success", env.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
}

func TestTriggerSyncReturnsJob(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sync/watch-history", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Status = %d, want 202", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected data shape: %T", env.Data)
	}
	jobID, _ := data["job_id"].(string)
	if jobID == "" {
		t.Fatal("Missing job_id in response")
	}

	// The unconfigured sync finishes quickly; poll until it does.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/api/v1/jobs/" + jobID)
		if err != nil {
			t.Fatalf("Job poll failed: %v", err)
		}
		env := decodeEnvelope(t, resp)
		job, _ := env.Data.(map[string]interface{})
		if job["status"] == "finished" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Job never finished: %+v", job)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetJobUnknown(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/jobs/no-such-job")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Status = %d, want 404", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("Unexpected error: %+v", env.Error)
	}
}

func TestAdminFlagLifecycle(t *testing.T) {
	srv, db := setupServer(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, &models.User{UserID: 10, Username: "alice", IsActive: true}); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/admins/10", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Set admin status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/admins")
	if err != nil {
		t.Fatalf("List admins failed: %v", err)
	}
	env := decodeEnvelope(t, resp)
	admins, _ := env.Data.([]interface{})
	if len(admins) != 1 {
		t.Fatalf("Expected 1 admin, got %d", len(admins))
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/v1/admins/10", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Remove admin status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/admins/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown user status = %d, want 404", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/admins/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Invalid id status = %d, want 400", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestUnsubscribeListLifecycle(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/v1/unsubscribe/newsletter_unsubscribe_list",
		map[string]interface{}{"user_ids": []int64{3, 1}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Replace status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/unsubscribe/newsletter_unsubscribe_list")
	if err != nil {
		t.Fatalf("Get list failed: %v", err)
	}
	env := decodeEnvelope(t, resp)
	ids, _ := env.Data.([]interface{})
	if len(ids) != 2 {
		t.Fatalf("Expected 2 user ids, got %d", len(ids))
	}

	resp, err = http.Get(srv.URL + "/api/v1/unsubscribe")
	if err != nil {
		t.Fatalf("List categories failed: %v", err)
	}
	env = decodeEnvelope(t, resp)
	lists, _ := env.Data.([]interface{})
	if len(lists) != 1 || lists[0] != "newsletter_unsubscribe_list" {
		t.Errorf("Unexpected lists: %v", lists)
	}

	resp, err = http.Get(srv.URL + "/api/v1/unsubscribe/not-a-list")
	if err != nil {
		t.Fatalf("Invalid list request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Invalid list status = %d, want 400", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestTableEndpoints(t *testing.T) {
	srv, db := setupServer(t)
	ctx := context.Background()

	if err := db.UpsertUser(ctx, &models.User{UserID: 10, Username: "alice"}); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/tables")
	if err != nil {
		t.Fatalf("List tables failed: %v", err)
	}
	env := decodeEnvelope(t, resp)
	tables, _ := env.Data.([]interface{})
	found := false
	for _, tb := range tables {
		if tb == "users" {
			found = true
		}
	}
	if !found {
		t.Errorf("users missing from table list: %v", tables)
	}

	resp, err = http.Get(srv.URL + "/api/v1/tables/users")
	if err != nil {
		t.Fatalf("Get table failed: %v", err)
	}
	env = decodeEnvelope(t, resp)
	rows, _ := env.Data.([]interface{})
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	resp, err = http.Get(srv.URL + "/api/v1/tables/passwords")
	if err != nil {
		t.Fatalf("Unknown table request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown table status = %d, want 404", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestProviderStatusUnconfigured(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/providers/status")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	env := decodeEnvelope(t, resp)
	status, _ := env.Data.(map[string]interface{})
	tautulli, _ := status["tautulli"].(map[string]interface{})
	if tautulli["configured"] != false || tautulli["alive"] != false {
		t.Errorf("Unexpected tautulli status: %v", tautulli)
	}
}

func TestPosterErrors(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/posters/season/1")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Unsupported kind status = %d, want 400", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/posters/movie/42")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown movie status = %d, want 404", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestEmailSettings(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/email/settings/newly_added")
	if err != nil {
		t.Fatalf("Get setting failed: %v", err)
	}
	env := decodeEnvelope(t, resp)
	data, _ := env.Data.(map[string]interface{})
	if data["enabled"] != false {
		t.Errorf("Default enabled = %v, want false", data["enabled"])
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/v1/email/settings/newly_added",
		map[string]bool{"enabled": true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Set setting status = %d, want 200", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/email/settings/newly_added")
	if err != nil {
		t.Fatalf("Get setting failed: %v", err)
	}
	env = decodeEnvelope(t, resp)
	data, _ = env.Data.(map[string]interface{})
	if data["enabled"] != true {
		t.Errorf("Enabled = %v, want true", data["enabled"])
	}

	resp, err = http.Get(srv.URL + "/api/v1/email/settings/bogus")
	if err != nil {
		t.Fatalf("Unknown setting request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Unknown setting status = %d, want 404", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestSendTestEmailValidation(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/email/test",
		map[string]string{"to": "not-an-email"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Invalid address status = %d, want 400", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// Valid address, but SMTP is unconfigured.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/email/test",
		map[string]string{"to": "alice@example.com"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Unconfigured SMTP status = %d, want 502", resp.StatusCode)
	}
	_ = resp.Body.Close()
}

func TestSendBulkEmailStreamsEvents(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/email/send",
		map[string]string{"list": "newsletter_unsubscribe_list", "subject": "s", "body": "<p>b</p>"})
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	// SMTP is unconfigured: the stream carries exactly one error event.
	scanner := bufio.NewScanner(resp.Body)
	var events []mailer.ProgressEvent
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev mailer.ProgressEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			t.Fatalf("Bad event payload %q: %v", line, err)
		}
		events = append(events, ev)
	}
	if len(events) != 1 || events[0].Type != mailer.EventError {
		t.Fatalf("Unexpected event stream: %+v", events)
	}
}
