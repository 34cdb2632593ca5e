// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package httpcache provides a read-through cache for provider HTTP GET
// requests, backed by BadgerDB for persistence across restarts.
//
// A cache hit returns the last successfully stored response immediately and
// revalidates it in the background, with at most one revalidation in flight
// per key. A cache miss fetches synchronously and stores the result. Callers
// that need a guaranteed-current response (API key validation, connectivity
// checks) pass forceFresh to bypass the cache entirely.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
)

// ErrUpstreamStatus indicates the origin answered with a non-2xx status.
var ErrUpstreamStatus = errors.New("upstream returned non-success status")

// maxResponseBytes bounds how much of an origin response is read and stored.
// Provider JSON payloads are well under this; the limit guards against a
// misbehaving origin streaming unbounded data into the store.
const maxResponseBytes = 16 << 20

// entry is the stored representation of one cached response.
type entry struct {
	Body      []byte `json:"body"`
	FetchedAt int64  `json:"fetched_at"`
}

// Cache is a read-through HTTP response cache.
//
// Get is safe for concurrent use. Revalidations run on background goroutines
// tracked by a WaitGroup so Close can drain them before releasing the store.
type Cache struct {
	db      *badger.DB
	client  *http.Client
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
	closed   bool
}

// New opens the on-disk cache at the configured path.
func New(cfg *config.CacheConfig) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for http cache: %w", err)
	}

	return NewWithDB(db, cfg.RequestTimeout), nil
}

// NewWithDB wraps an already-open BadgerDB. The caller keeps ownership of
// databases it opens itself only if it skips Close; Close always closes db.
func NewWithDB(db *badger.DB, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{
		db:       db,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Close drains in-flight revalidations and closes the underlying store.
func (c *Cache) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return c.db.Close()
}

// Get returns the response body for a GET of rawURL with the given query
// parameters and headers.
//
// On a cache hit the stored body is returned immediately and a background
// revalidation is started unless one is already running for the same key.
// On a miss the fetch is synchronous. forceFresh skips the cache lookup and
// always fetches, storing the result on success.
func (c *Cache) Get(ctx context.Context, rawURL string, params map[string]string, headers map[string]string, forceFresh bool) ([]byte, error) {
	key := cacheKey(rawURL, params, headers)

	if forceFresh {
		return c.fetchAndStore(ctx, key, rawURL, params, headers)
	}

	if body, ok := c.lookup(key); ok {
		metrics.HTTPCacheHits.Inc()
		c.revalidate(key, rawURL, params, headers)
		return body, nil
	}

	metrics.HTTPCacheMisses.Inc()
	return c.fetchAndStore(ctx, key, rawURL, params, headers)
}

// lookup reads a stored entry, returning its body and whether it was found.
func (c *Cache) lookup(key string) ([]byte, bool) {
	var ent entry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ent)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Warn().Err(err).Msg("http cache read failed")
		}
		return nil, false
	}

	return ent.Body, true
}

// revalidate refreshes a key in the background. At most one revalidation per
// key runs at a time; concurrent hits on the same key are deduplicated.
func (c *Cache) revalidate(key, rawURL string, params, headers map[string]string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, running := c.inflight[key]; running {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = struct{}{}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
			c.wg.Done()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		metrics.HTTPCacheRevalidations.Inc()
		if _, err := c.fetchAndStore(ctx, key, rawURL, params, headers); err != nil {
			// The stale entry stays; the next hit retries revalidation.
			logging.Debug().Err(err).Str("url", rawURL).Msg("cache revalidation failed")
		}
	}()
}

// fetchAndStore performs the origin request and stores the body on success.
func (c *Cache) fetchAndStore(ctx context.Context, key, rawURL string, params, headers map[string]string) ([]byte, error) {
	body, err := c.fetch(ctx, rawURL, params, headers)
	if err != nil {
		return nil, err
	}

	ent := entry{Body: body, FetchedAt: time.Now().Unix()}
	data, err := json.Marshal(&ent)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		// Storing failed but the fetch succeeded; serve the live body.
		logging.Warn().Err(err).Msg("http cache write failed")
	}

	return body, nil
}

func (c *Cache) fetch(ctx context.Context, rawURL string, params, headers map[string]string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Host, err)
	}
	defer closeQuietly(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s from %s", ErrUpstreamStatus, resp.Status, u.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return body, nil
}

// cacheKey derives a stable key from the URL, the query parameters in sorted
// order, and the headers in sorted order. Headers participate so that the
// same URL fetched with different credentials never shares an entry.
func cacheKey(rawURL string, params, headers map[string]string) string {
	var sb strings.Builder
	sb.WriteString(rawURL)

	for _, m := range []map[string]string{params, headers} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte('\x00')
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(m[k])
		}
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return "resp:" + hex.EncodeToString(sum[:])
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
