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
	"github.com/tomtom215/curatarr/internal/models/tautulli"
)

// historyPageLength asks for the whole history in one page, matching the
// provider's own "everything" convention. The provider caps responses
// server-side; full-refresh syncs tolerate the cap because earlier rows
// are already ingested.
const historyPageLength = 9999999

// TautulliClient talks to the watch-history provider's v2 API. Every
// command is a GET on /api/v2 with apikey and cmd query parameters.
//
// An unconfigured client (missing URL or API key) returns nil data and no
// error from collection methods, so dependent sync steps skip gracefully.
type TautulliClient struct {
	cfg     *config.TautulliConfig
	fetcher *fetcher
}

// NewTautulliClient creates a client reading through the given HTTP cache.
func NewTautulliClient(cfg *config.TautulliConfig, cache *httpcache.Cache) *TautulliClient {
	return &TautulliClient{
		cfg:     cfg,
		fetcher: newFetcher("tautulli", cache),
	}
}

// Configured reports whether the provider connection settings are usable.
func (c *TautulliClient) Configured() bool {
	return c.cfg.Configured()
}

// makeRequest performs one API command and decodes the wrapper into result.
func (c *TautulliClient) makeRequest(ctx context.Context, cmd string, args map[string]string, forceFresh bool, result interface{}) error {
	params := map[string]string{
		"apikey": c.cfg.APIKey,
		"cmd":    cmd,
	}
	for k, v := range args {
		params[k] = v
	}

	url := c.cfg.URL + "/api/v2"
	if err := c.fetcher.getJSON(ctx, url, params, nil, forceFresh, result); err != nil {
		return fmt.Errorf("tautulli %s: %w", cmd, err)
	}
	return nil
}

// Alive reports whether the provider answers a fresh get_libraries call.
func (c *TautulliClient) Alive(ctx context.Context) bool {
	if !c.Configured() {
		return false
	}
	var libs tautulli.Libraries
	if err := c.makeRequest(ctx, "get_libraries", nil, true, &libs); err != nil {
		return false
	}
	return libs.Response.Result == "success"
}

// GetUsers returns every provider account except the synthetic "Local"
// account (user_id 0). Nil data with nil error means unconfigured.
func (c *TautulliClient) GetUsers(ctx context.Context) ([]tautulli.UserRecord, error) {
	if !c.Configured() {
		return nil, nil
	}

	var users tautulli.Users
	if err := c.makeRequest(ctx, "get_users", nil, false, &users); err != nil {
		return nil, err
	}
	if users.Response.Result != "success" {
		return nil, apiError("get_users", users.Response.Message)
	}

	records := make([]tautulli.UserRecord, 0, len(users.Response.Data))
	for _, u := range users.Response.Data {
		if u.UserID == 0 || u.Username == "Local" {
			continue
		}
		records = append(records, u)
	}
	return records, nil
}

// GetLastWatch returns the user's most recent history page (one record,
// ordered by stop time) together with the total watch duration string.
func (c *TautulliClient) GetLastWatch(ctx context.Context, userID int) (*tautulli.HistoryData, error) {
	if !c.Configured() {
		return nil, nil
	}

	var history tautulli.History
	args := map[string]string{
		"user_id":      strconv.Itoa(userID),
		"order_column": "stopped",
		"order_dir":    "desc",
		"length":       "1",
	}
	if err := c.makeRequest(ctx, "get_history", args, false, &history); err != nil {
		return nil, err
	}
	if history.Response.Result != "success" {
		return nil, apiError("get_history", history.Response.Message)
	}
	return &history.Response.Data, nil
}

// GetEpisodeWatchHistory returns every episode watch for one user.
func (c *TautulliClient) GetEpisodeWatchHistory(ctx context.Context, userID int) ([]tautulli.HistoryRecord, error) {
	return c.watchHistory(ctx, userID, "episode")
}

// GetMovieWatchHistory returns every movie watch for one user.
func (c *TautulliClient) GetMovieWatchHistory(ctx context.Context, userID int) ([]tautulli.HistoryRecord, error) {
	return c.watchHistory(ctx, userID, "movie")
}

func (c *TautulliClient) watchHistory(ctx context.Context, userID int, mediaType string) ([]tautulli.HistoryRecord, error) {
	if !c.Configured() {
		return nil, nil
	}

	var history tautulli.History
	args := map[string]string{
		"user_id":    strconv.Itoa(userID),
		"media_type": mediaType,
		"length":     strconv.Itoa(historyPageLength),
	}
	if err := c.makeRequest(ctx, "get_history", args, false, &history); err != nil {
		return nil, err
	}
	if history.Response.Result != "success" {
		return nil, apiError("get_history", history.Response.Message)
	}
	return history.Response.Data.Data, nil
}

// GetLibraryMediaInfo lists the children of a rating key. For a show
// rating key the rows are its seasons, carrying added_at timestamps.
func (c *TautulliClient) GetLibraryMediaInfo(ctx context.Context, ratingKey int64) ([]tautulli.LibraryMediaRow, error) {
	if !c.Configured() {
		return nil, nil
	}

	var info tautulli.LibraryMediaInfo
	args := map[string]string{
		"rating_key": strconv.FormatInt(ratingKey, 10),
		"length":     strconv.Itoa(historyPageLength),
	}
	if err := c.makeRequest(ctx, "get_library_media_info", args, false, &info); err != nil {
		return nil, err
	}
	if info.Response.Result != "success" {
		return nil, apiError("get_library_media_info", info.Response.Message)
	}
	return info.Response.Data.Data, nil
}

// GetMetadata returns full metadata for one rating key, or nil when the
// provider no longer knows the item (deleted media keeps history rows).
func (c *TautulliClient) GetMetadata(ctx context.Context, ratingKey int64) (*tautulli.MetadataData, error) {
	if !c.Configured() {
		return nil, nil
	}

	var meta tautulli.Metadata
	args := map[string]string{"rating_key": strconv.FormatInt(ratingKey, 10)}
	if err := c.makeRequest(ctx, "get_metadata", args, false, &meta); err != nil {
		return nil, err
	}
	if meta.Response.Result != "success" {
		return nil, nil
	}
	return &meta.Response.Data, nil
}

// GetPosterImage fetches poster bytes through the provider's image proxy.
func (c *TautulliClient) GetPosterImage(ctx context.Context, thumbPath string) ([]byte, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("tautulli is not configured")
	}

	params := map[string]string{
		"apikey": c.cfg.APIKey,
		"cmd":    "pms_image_proxy",
		"img":    thumbPath,
	}
	return c.fetcher.getBytes(ctx, c.cfg.URL+"/api/v2", params, nil, false)
}

func apiError(cmd string, message *string) error {
	if message != nil {
		return fmt.Errorf("tautulli %s returned error: %s", cmd, *message)
	}
	return fmt.Errorf("tautulli %s returned error", cmd)
}
