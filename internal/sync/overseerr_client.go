// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/httpcache"
	"github.com/tomtom215/curatarr/internal/models/overseerr"
)

// requestPageSize asks for every request in one page, the provider's own
// "take everything" convention.
const requestPageSize = 9999999

// OverseerrClient talks to the request provider's v1 API. Authentication
// is an X-Api-Key header on every call.
type OverseerrClient struct {
	cfg     *config.OverseerrConfig
	fetcher *fetcher
}

// NewOverseerrClient creates a client reading through the given HTTP cache.
func NewOverseerrClient(cfg *config.OverseerrConfig, cache *httpcache.Cache) *OverseerrClient {
	return &OverseerrClient{
		cfg:     cfg,
		fetcher: newFetcher("overseerr", cache),
	}
}

// Configured reports whether the provider connection settings are usable.
func (c *OverseerrClient) Configured() bool {
	return c.cfg.Configured()
}

func (c *OverseerrClient) headers() map[string]string {
	return map[string]string{"X-Api-Key": c.cfg.APIKey}
}

func (c *OverseerrClient) get(ctx context.Context, path string, params map[string]string, forceFresh bool, result interface{}) error {
	url := c.cfg.URL + "/api/v1/" + path
	if err := c.fetcher.getJSON(ctx, url, params, c.headers(), forceFresh, result); err != nil {
		return fmt.Errorf("overseerr %s: %w", path, err)
	}
	return nil
}

// Alive reports whether the provider answers its status endpoint.
func (c *OverseerrClient) Alive(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}
	var status overseerr.Status
	return c.get(ctx, "status", nil, false, &status) == nil
}

// ValidateAPIKey checks the configured key against the user endpoint,
// bypassing the cache so a rotated key is noticed immediately.
func (c *OverseerrClient) ValidateAPIKey(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}
	var user overseerr.User
	return c.get(ctx, "user", nil, true, &user) == nil
}

// GetRequests returns all media requests. Requests are always fetched
// fresh; the high-water-mark filter happens client-side in the sync pass.
// Nil data with nil error means unconfigured.
func (c *OverseerrClient) GetRequests(ctx context.Context) ([]overseerr.Request, error) {
	if !c.Configured() {
		return nil, nil
	}

	var resp overseerr.RequestsResponse
	params := map[string]string{"take": strconv.Itoa(requestPageSize)}
	if err := c.get(ctx, "request", params, true, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetMovieDetails returns title/year/poster metadata for a movie by its
// catalog id.
func (c *OverseerrClient) GetMovieDetails(ctx context.Context, tmdbID int64) (*overseerr.MovieDetails, error) {
	if !c.Configured() {
		return nil, nil
	}

	var details overseerr.MovieDetails
	if err := c.get(ctx, "movie/"+strconv.FormatInt(tmdbID, 10), nil, false, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetTvDetails returns title/year/poster/season metadata for a show by
// its catalog id.
func (c *OverseerrClient) GetTvDetails(ctx context.Context, tmdbID int64) (*overseerr.TvDetails, error) {
	if !c.Configured() {
		return nil, nil
	}

	var details overseerr.TvDetails
	if err := c.get(ctx, "tv/"+strconv.FormatInt(tmdbID, 10), nil, false, &details); err != nil {
		return nil, err
	}
	return &details, nil
}
