// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package httpcache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("Failed to open in-memory badger: %v", err)
	}

	c := NewWithDB(db, 5*time.Second)
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Failed to close cache: %v", err)
		}
	})

	return c
}

func TestGetMissFetchesSynchronously(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.URL.Query().Get("apikey"); got != "secret" {
			t.Errorf("Expected apikey=secret, got %q", got)
		}
		w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	c := setupCache(t)

	body, err := c.Get(context.Background(), srv.URL, map[string]string{"apikey": "secret"}, nil, false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(body) != `{"result":"ok"}` {
		t.Errorf("Unexpected body: %s", body)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 origin call, got %d", calls.Load())
	}
}

func TestGetHitServesCachedBody(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			// Revalidation requests block until the test releases them so
			// the second Get observably serves the stored body.
			<-release
		}
		w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	c := setupCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, srv.URL, nil, nil, false); err != nil {
		t.Fatalf("First Get failed: %v", err)
	}

	body, err := c.Get(ctx, srv.URL, nil, nil, false)
	if err != nil {
		t.Fatalf("Second Get failed: %v", err)
	}
	if string(body) != `{"n":1}` {
		t.Errorf("Unexpected cached body: %s", body)
	}

	close(release)
}

func TestRevalidationSingleFlight(t *testing.T) {
	var calls atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			<-release
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := setupCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, srv.URL, nil, nil, false); err != nil {
		t.Fatalf("Priming Get failed: %v", err)
	}

	// Every hit while a revalidation is blocked must not start another one.
	for i := 0; i < 10; i++ {
		if _, err := c.Get(ctx, srv.URL, nil, nil, false); err != nil {
			t.Fatalf("Hit %d failed: %v", i, err)
		}
	}

	if got := calls.Load(); got > 2 {
		t.Errorf("Expected at most 2 origin calls (prime + 1 revalidation), got %d", got)
	}

	close(release)
}

func TestRevalidationRefreshesEntry(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"v":"old"}`))
			return
		}
		w.Write([]byte(`{"v":"new"}`))
	}))
	defer srv.Close()

	c := setupCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, srv.URL, nil, nil, false); err != nil {
		t.Fatalf("Priming Get failed: %v", err)
	}

	// Trigger a revalidation and wait for it to finish.
	if _, err := c.Get(ctx, srv.URL, nil, nil, false); err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	c.wg.Wait()

	body, err := c.Get(ctx, srv.URL, nil, nil, false)
	if err != nil {
		t.Fatalf("Post-revalidation Get failed: %v", err)
	}
	if string(body) != `{"v":"new"}` {
		t.Errorf("Expected revalidated body, got %s", body)
	}
}

func TestForceFreshBypassesCache(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := setupCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.Get(ctx, srv.URL, nil, nil, true); err != nil {
			t.Fatalf("forceFresh Get %d failed: %v", i, err)
		}
	}

	if calls.Load() != 3 {
		t.Errorf("Expected 3 origin calls with forceFresh, got %d", calls.Load())
	}
}

func TestUpstreamErrorNotCached(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := setupCache(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, srv.URL, nil, nil, false); err == nil {
		t.Fatal("Expected error for 502 response")
	}

	// The failure must not have poisoned the cache; the retry misses again
	// and stores the good body.
	body, err := c.Get(ctx, srv.URL, nil, nil, false)
	if err != nil {
		t.Fatalf("Retry Get failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Unexpected body after retry: %s", body)
	}
}

func TestCacheKeyDistinguishesParamsAndHeaders(t *testing.T) {
	base := cacheKey("http://host/api", map[string]string{"a": "1"}, nil)

	cases := map[string]string{
		"different param value": cacheKey("http://host/api", map[string]string{"a": "2"}, nil),
		"extra param":           cacheKey("http://host/api", map[string]string{"a": "1", "b": "2"}, nil),
		"header added":          cacheKey("http://host/api", map[string]string{"a": "1"}, map[string]string{"X-Api-Key": "k"}),
		"different url":         cacheKey("http://host/other", map[string]string{"a": "1"}, nil),
	}
	for name, key := range cases {
		if key == base {
			t.Errorf("%s: expected distinct key", name)
		}
	}

	// Map iteration order must not matter.
	again := cacheKey("http://host/api", map[string]string{"a": "1"}, nil)
	if again != base {
		t.Error("Expected identical inputs to produce identical keys")
	}
}
