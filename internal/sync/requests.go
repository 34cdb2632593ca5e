// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/curatarr/internal/database"
	"github.com/tomtom215/curatarr/internal/identity"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
	"github.com/tomtom215/curatarr/internal/models"
	"github.com/tomtom215/curatarr/internal/models/overseerr"
)

// syncRequests is the incremental request pass body. It fetches the full
// request listing, drops everything at or below the stored high-water
// mark, ingests the rest, and advances the mark only after every new
// request landed. A partial failure therefore re-ingests on the next
// pass, which the upsert conflict keys make a no-op.
func (m *Manager) syncRequests(ctx context.Context) (int, error) {
	requests, err := m.overseerr.GetRequests(ctx)
	if err != nil {
		return 0, err
	}
	if requests == nil {
		logging.Warn().Msg("Overseerr is not configured, skipping request sync")
		return 0, nil
	}

	hwm, err := m.db.GetRequestHighWaterMark(ctx)
	if err != nil {
		return 0, err
	}

	users, err := m.db.GetUsers(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	maxUpdated := hwm
	for _, req := range requests {
		updatedAt, err := time.Parse(time.RFC3339, req.UpdatedAt)
		if err != nil {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceRequests, "bad_timestamp").Inc()
			logging.Warn().Int64("request_id", req.ID).Str("updated_at", req.UpdatedAt).
				Msg("Skipping request with unparseable timestamp")
			continue
		}
		if updatedAt.Unix() <= hwm {
			continue
		}

		if err := m.ingestRequest(ctx, req, updatedAt.Unix(), users); err != nil {
			if errors.Is(err, identity.ErrUnresolved) {
				metrics.SyncRecordsSkipped.WithLabelValues(SourceRequests, "unresolved").Inc()
				logging.Debug().Int64("request_id", req.ID).Msg("Skipping unresolvable request")
				continue
			}
			return processed, err
		}

		processed++
		if u := updatedAt.Unix(); u > maxUpdated {
			maxUpdated = u
		}
	}

	if maxUpdated > hwm {
		if err := m.db.SetRequestHighWaterMark(ctx, maxUpdated); err != nil {
			return processed, err
		}
	}
	return processed, nil
}

// ingestRequest stores one provider request, creating the media rows it
// refers to when they are not already known from watch history.
func (m *Manager) ingestRequest(ctx context.Context, req overseerr.Request, updatedAt int64, users []*models.User) error {
	createdAt := updatedAt
	if t, err := time.Parse(time.RFC3339, req.CreatedAt); err == nil {
		createdAt = t.Unix()
	}
	userID := m.mapRequester(req.RequestedBy, users)

	switch req.Type {
	case "movie":
		return m.ingestMovieRequest(ctx, req, createdAt, updatedAt, userID)
	case "tv":
		return m.ingestTvRequest(ctx, req, createdAt, updatedAt, userID)
	default:
		metrics.SyncRecordsSkipped.WithLabelValues(SourceRequests, "unknown_type").Inc()
		logging.Warn().Int64("request_id", req.ID).Str("type", req.Type).Msg("Skipping request of unknown type")
		return nil
	}
}

func (m *Manager) ingestMovieRequest(ctx context.Context, req overseerr.Request, createdAt, updatedAt, userID int64) error {
	if req.Media.TmdbID == nil {
		return identity.ErrUnresolved
	}

	movie, err := m.db.GetMovieByTMDBID(ctx, *req.Media.TmdbID)
	if errors.Is(err, database.ErrNotFound) {
		movie, err = m.createMovieFromDetails(ctx, *req.Media.TmdbID)
	}
	if err != nil {
		return err
	}

	externalID := req.ID
	return m.db.UpsertMovieRequest(ctx, &models.MovieRequest{
		MovieID:           movie.MovieID,
		ExternalRequestID: &externalID,
		RequestedAt:       createdAt,
		Status:            req.Status,
		UpdatedAt:         &updatedAt,
		UserID:            userID,
	})
}

// createMovieFromDetails resolves a movie known only by its catalog id by
// fetching the request provider's detail view.
func (m *Manager) createMovieFromDetails(ctx context.Context, tmdbID int64) (*models.Movie, error) {
	details, err := m.overseerr.GetMovieDetails(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	if details == nil || details.Title == "" {
		return nil, identity.ErrUnresolved
	}

	id := identity.MovieIdentity{
		Title:  details.Title,
		Year:   yearFromDate(details.ReleaseDate),
		TMDBID: &tmdbID,
	}
	if details.PosterPath != "" {
		id.TMDBPoster = &details.PosterPath
	}
	return m.resolver.ResolveMovie(ctx, id)
}

func (m *Manager) ingestTvRequest(ctx context.Context, req overseerr.Request, createdAt, updatedAt, userID int64) error {
	if req.Media.TmdbID == nil {
		return identity.ErrUnresolved
	}

	details, err := m.overseerr.GetTvDetails(ctx, *req.Media.TmdbID)
	if err != nil {
		return err
	}
	if details == nil || details.Name == "" {
		return identity.ErrUnresolved
	}

	id := identity.ShowIdentity{
		Title:  details.Name,
		Year:   yearFromDate(details.FirstAirDate),
		TVDBID: details.ExternalIDs.TvdbID,
	}
	if details.PosterPath != "" {
		id.TMDBPoster = &details.PosterPath
	}
	show, err := m.resolver.ResolveShow(ctx, id)
	if err != nil {
		return err
	}

	// Seasons the provider knows about exist before any of them are
	// requested, so a request for season 3 of an unseen show still yields
	// seasons 1 and 2 as rows.
	seasonIDs := make(map[int]int64, len(details.Seasons))
	for _, s := range details.Seasons {
		if s.SeasonNumber == 0 {
			continue
		}
		episodes := s.EpisodeCount
		season, err := m.resolver.ResolveSeason(ctx, show.ShowID, s.SeasonNumber, nil, &episodes, nil)
		if err != nil {
			return err
		}
		seasonIDs[s.SeasonNumber] = season.SeasonID
	}

	externalID := req.ID
	for _, s := range req.Seasons {
		seasonID, ok := seasonIDs[s.SeasonNumber]
		if !ok {
			season, err := m.resolver.ResolveSeason(ctx, show.ShowID, s.SeasonNumber, nil, nil, nil)
			if err != nil {
				return err
			}
			seasonID = season.SeasonID
		}

		if err := m.db.UpsertSeasonRequest(ctx, &models.SeasonRequest{
			SeasonID:          seasonID,
			ShowID:            show.ShowID,
			ExternalRequestID: &externalID,
			RequestedAt:       createdAt,
			Status:            req.Status,
			UpdatedAt:         &updatedAt,
			UserID:            userID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// mapRequester matches a request account to a stored media server user,
// by username first and email second. Unmatched requesters map to user 0.
func (m *Manager) mapRequester(requester overseerr.User, users []*models.User) int64 {
	names := make([]string, 0, 2)
	if requester.PlexUsername != nil && *requester.PlexUsername != "" {
		names = append(names, *requester.PlexUsername)
	}
	if requester.Username != nil && *requester.Username != "" {
		names = append(names, *requester.Username)
	}

	for _, u := range users {
		for _, name := range names {
			if strings.EqualFold(u.Username, name) {
				return u.UserID
			}
		}
	}
	if requester.Email != "" {
		for _, u := range users {
			if u.Email != "" && strings.EqualFold(u.Email, requester.Email) {
				return u.UserID
			}
		}
	}
	return 0
}

// yearFromDate extracts the year from a "YYYY-MM-DD" date, nil when the
// provider sent an empty or malformed date.
func yearFromDate(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year == 0 {
		return nil
	}
	return &year
}
