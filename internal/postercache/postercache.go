// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package postercache serves poster images from an on-disk cache keyed by
// media kind and internal id, lazily fetching misses from the media server's
// image proxy with the catalog provider's CDN as fallback.
//
// Posters are treated as immutable: once a file exists it is served as-is,
// with no expiry or revalidation.
package postercache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomtom215/curatarr/internal/config"
	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
	"github.com/tomtom215/curatarr/internal/models"
)

var (
	// ErrUnsupportedKind indicates a poster was requested for a media kind
	// that has no poster of its own (seasons and episodes use their show's).
	ErrUnsupportedKind = errors.New("media kind has no poster")

	// ErrNoPoster indicates the entity exists but no source has supplied a
	// poster path for it, so there is nothing to fetch.
	ErrNoPoster = errors.New("no poster available")
)

// ImageSource fetches raw poster bytes for a provider-specific path.
type ImageSource interface {
	GetPosterImage(ctx context.Context, path string) ([]byte, error)
}

// Cache is the on-disk poster store.
//
// Either source may be nil when the corresponding provider is not
// configured; a nil source is skipped during fetch.
type Cache struct {
	dir         string
	db          *database.DB
	mediaServer ImageSource
	catalog     ImageSource
}

// New creates the cache directory if needed and returns a Cache reading
// entity poster paths from db and fetching misses from the given sources.
func New(cfg *config.PosterConfig, db *database.DB, mediaServer, catalog ImageSource) (*Cache, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create poster cache directory: %w", err)
	}
	return &Cache{
		dir:         cfg.Dir,
		db:          db,
		mediaServer: mediaServer,
		catalog:     catalog,
	}, nil
}

// Get returns the poster bytes for the given entity, fetching and storing
// them on first request.
func (c *Cache) Get(ctx context.Context, kind models.MediaKind, id int64) ([]byte, error) {
	if kind != models.MediaKindMovie && kind != models.MediaKindShow {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	path := c.filePath(kind, id)
	if data, err := os.ReadFile(path); err == nil {
		metrics.PosterCacheHits.Inc()
		return data, nil
	}

	serverPath, catalogPath, err := c.posterPaths(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	data, err := c.fetch(ctx, serverPath, catalogPath)
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o640); err != nil {
		// Serving the fetched bytes still works; only the cache write failed.
		logging.Warn().Err(err).Str("path", path).Msg("poster cache write failed")
	}

	return data, nil
}

// posterPaths loads the entity row and returns its provider poster paths.
func (c *Cache) posterPaths(ctx context.Context, kind models.MediaKind, id int64) (serverPath, catalogPath *string, err error) {
	switch kind {
	case models.MediaKindMovie:
		m, err := c.db.GetMovie(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return m.Poster, m.TMDBPoster, nil
	default:
		s, err := c.db.GetShow(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return s.Poster, s.TMDBPoster, nil
	}
}

// fetch tries the media server's image proxy first, then the catalog CDN.
func (c *Cache) fetch(ctx context.Context, serverPath, catalogPath *string) ([]byte, error) {
	if c.mediaServer != nil && serverPath != nil && *serverPath != "" {
		data, err := c.mediaServer.GetPosterImage(ctx, *serverPath)
		if err == nil && len(data) > 0 {
			metrics.PosterFetches.WithLabelValues("tautulli", "ok").Inc()
			return data, nil
		}
		metrics.PosterFetches.WithLabelValues("tautulli", "error").Inc()
		logging.Debug().Err(err).Str("path", *serverPath).Msg("media server poster fetch failed")
	}

	if c.catalog != nil && catalogPath != nil && *catalogPath != "" {
		data, err := c.catalog.GetPosterImage(ctx, *catalogPath)
		if err == nil && len(data) > 0 {
			metrics.PosterFetches.WithLabelValues("tmdb", "ok").Inc()
			return data, nil
		}
		metrics.PosterFetches.WithLabelValues("tmdb", "error").Inc()
		logging.Debug().Err(err).Str("path", *catalogPath).Msg("catalog poster fetch failed")
	}

	return nil, ErrNoPoster
}

func (c *Cache) filePath(kind models.MediaKind, id int64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%d.jpg", kind, id))
}
