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
	"github.com/tomtom215/curatarr/internal/models/tmdb"
)

// TMDBClient talks to the metadata/catalog provider's v3 API with bearer
// token authentication. It also serves poster bytes from the provider's
// image CDN, which the poster cache uses as fallback origin.
type TMDBClient struct {
	cfg     *config.TMDBConfig
	fetcher *fetcher
}

// NewTMDBClient creates a client reading through the given HTTP cache.
func NewTMDBClient(cfg *config.TMDBConfig, cache *httpcache.Cache) *TMDBClient {
	return &TMDBClient{
		cfg:     cfg,
		fetcher: newFetcher("tmdb", cache),
	}
}

// Configured reports whether the provider connection settings are usable.
func (c *TMDBClient) Configured() bool {
	return c.cfg.Configured()
}

func (c *TMDBClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIToken}
}

// GetMovieDetails returns catalog metadata for a movie.
func (c *TMDBClient) GetMovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error) {
	if !c.Configured() {
		return nil, nil
	}

	var details tmdb.MovieDetails
	url := c.cfg.URL + "/3/movie/" + strconv.FormatInt(id, 10)
	if err := c.fetcher.getJSON(ctx, url, nil, c.headers(), false, &details); err != nil {
		return nil, fmt.Errorf("tmdb movie %d: %w", id, err)
	}
	return &details, nil
}

// GetTvDetails returns catalog metadata for a show.
func (c *TMDBClient) GetTvDetails(ctx context.Context, id int64) (*tmdb.TvDetails, error) {
	if !c.Configured() {
		return nil, nil
	}

	var details tmdb.TvDetails
	url := c.cfg.URL + "/3/tv/" + strconv.FormatInt(id, 10)
	if err := c.fetcher.getJSON(ctx, url, nil, c.headers(), false, &details); err != nil {
		return nil, fmt.Errorf("tmdb tv %d: %w", id, err)
	}
	return &details, nil
}

// GetPosterImage fetches poster bytes from the image CDN. The CDN needs
// no authentication; posterPath is the "/abc123.jpg" style path stored on
// movie and show rows.
func (c *TMDBClient) GetPosterImage(ctx context.Context, posterPath string) ([]byte, error) {
	if c.cfg.ImageBaseURL == "" {
		return nil, fmt.Errorf("tmdb image base url is not configured")
	}
	return c.fetcher.getBytes(ctx, c.cfg.ImageBaseURL+posterPath, nil, nil, false)
}
