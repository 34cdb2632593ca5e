// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/curatarr/internal/identity"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
	"github.com/tomtom215/curatarr/internal/models"
	"github.com/tomtom215/curatarr/internal/models/tautulli"
)

// syncWatchHistory is the full pass body. Users are upserted before any
// watch ingestion that references them; shows and seasons are created
// before their episodes by calling order.
func (m *Manager) syncWatchHistory(ctx context.Context) (int, error) {
	users, err := m.tautulli.GetUsers(ctx)
	if err != nil {
		return 0, err
	}
	if users == nil {
		logging.Warn().Msg("Tautulli is not configured, skipping watch history sync")
		return 0, nil
	}

	processed := 0
	for _, u := range users {
		if err := m.upsertUser(ctx, u); err != nil {
			return processed, err
		}
		processed++
	}

	for _, u := range users {
		n, err := m.ingestMovieHistory(ctx, u.UserID)
		if err != nil {
			return processed, err
		}
		processed += n

		n, err = m.ingestEpisodeHistory(ctx, u.UserID)
		if err != nil {
			return processed, err
		}
		processed += n
	}

	n, err := m.syncSeasonMetadata(ctx)
	return processed + n, err
}

// upsertUser stores one provider account enriched with aggregate watch
// stats from its most recent history page. Enrichment failures degrade to
// an un-enriched upsert; the account row itself must not be lost.
func (m *Manager) upsertUser(ctx context.Context, u tautulli.UserRecord) error {
	user := &models.User{
		UserID:       int64(u.UserID),
		Username:     u.Username,
		FriendlyName: u.FriendlyName,
		Email:        u.Email,
		IsActive:     u.IsActive != 0,
	}

	last, err := m.tautulli.GetLastWatch(ctx, u.UserID)
	if err != nil {
		logging.Warn().Err(err).Int("user_id", u.UserID).Msg("User stats enrichment failed")
	} else if last != nil {
		user.TotalDuration = last.TotalDuration
		if len(last.Data) > 0 {
			enrichFromLastWatch(user, last.Data[0], time.Now())
		}
	}

	return m.db.UpsertUser(ctx, user)
}

// enrichFromLastWatch fills the last-seen fields from the user's most
// recent watch record.
func enrichFromLastWatch(user *models.User, rec tautulli.HistoryRecord, now time.Time) {
	user.LastWatched = formatLastWatched(rec)
	stopped := rec.Stopped
	user.LastSeenUnix = &stopped

	seen := time.Unix(stopped, 0)
	user.LastSeenFormatted = humanizeSince(now.Sub(seen))
	user.LastSeenDate = seen.Format("15:04, Mon 02 Jan")
}

// formatLastWatched renders the most recent title. Episodes get a season
// and episode tag spliced into the provider's "Show - Episode" full title,
// e.g. "BoJack Horseman (S06E16) - Nice While It Lasted".
func formatLastWatched(rec tautulli.HistoryRecord) string {
	if rec.MediaType == "movie" {
		return rec.FullTitle
	}

	season := seasonNumber(rec)
	episode := -1
	if rec.MediaIndex != nil {
		episode = *rec.MediaIndex
	}
	if season < 0 || episode < 0 {
		return rec.FullTitle
	}

	tag := fmt.Sprintf("(S%02dE%02d) -", season, episode)
	parts := strings.SplitN(rec.FullTitle, "-", 2)
	if len(parts) != 2 {
		return rec.FullTitle + " " + tag
	}
	return parts[0] + tag + parts[1]
}

// humanizeSince renders an elapsed duration as "N units ago".
func humanizeSince(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 60 {
		return "just now"
	}

	intervals := []struct {
		name    string
		seconds int64
	}{
		{"year", 31536000},
		{"month", 2592000},
		{"week", 604800},
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
	}
	for _, iv := range intervals {
		if value := seconds / iv.seconds; value >= 1 {
			unit := iv.name
			if value != 1 {
				unit += "s"
			}
			return fmt.Sprintf("%d %s ago", value, unit)
		}
	}
	return "just now"
}

// ingestMovieHistory records every movie watch for one user. A record
// that cannot be resolved or violates a store invariant is skipped.
func (m *Manager) ingestMovieHistory(ctx context.Context, userID int) (int, error) {
	history, err := m.tautulli.GetMovieWatchHistory(ctx, userID)
	if err != nil {
		logging.Warn().Err(err).Int("user_id", userID).Msg("Movie history unavailable this pass")
		return 0, nil
	}

	processed := 0
	for _, rec := range history {
		if rec.UserID == nil {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "no_user").Inc()
			continue
		}

		movie, err := m.resolver.ResolveMovie(ctx, identity.MovieIdentity{
			Title:     rec.Title,
			Year:      rec.Year,
			RatingKey: intKeyToInt64(rec.RatingKey),
		})
		if errors.Is(err, identity.ErrUnresolved) {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "unresolved").Inc()
			logging.Debug().Str("title", rec.Title).Msg("Skipping unresolvable movie record")
			continue
		}
		if err != nil {
			return processed, err
		}

		if movie.AddedAt == nil && movie.RatingKey != nil {
			m.backfillMovieMetadata(ctx, movie)
		}

		created, err := m.db.RecordMovieWatch(ctx, &models.MovieWatch{
			UserID:        int64(*rec.UserID),
			MovieID:       movie.MovieID,
			Started:       rec.Started,
			Stopped:       rec.Stopped,
			PauseDuration: pauseDuration(rec),
		})
		if err != nil {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "invalid_watch").Inc()
			logging.Warn().Err(err).Str("title", rec.Title).Msg("Dropping invalid movie watch")
			continue
		}
		if created {
			processed++
		}
	}
	return processed, nil
}

// backfillMovieMetadata fetches added_at and the poster thumb for a movie
// the history pass created without them. Failures are tolerated; the next
// pass retries.
func (m *Manager) backfillMovieMetadata(ctx context.Context, movie *models.Movie) {
	meta, err := m.tautulli.GetMetadata(ctx, *movie.RatingKey)
	if err != nil || meta == nil {
		return
	}

	patch := &models.Movie{MovieID: movie.MovieID}
	if meta.AddedAt > 0 {
		patch.AddedAt = &meta.AddedAt
	}
	if meta.Thumb != "" {
		patch.Poster = &meta.Thumb
	}
	if err := m.db.BackfillMovie(ctx, patch); err != nil {
		logging.Warn().Err(err).Int64("movie_id", movie.MovieID).Msg("Movie metadata backfill failed")
	}
}

// ingestEpisodeHistory records every episode watch for one user, creating
// the show/season/episode chain in dependency order.
func (m *Manager) ingestEpisodeHistory(ctx context.Context, userID int) (int, error) {
	history, err := m.tautulli.GetEpisodeWatchHistory(ctx, userID)
	if err != nil {
		logging.Warn().Err(err).Int("user_id", userID).Msg("Episode history unavailable this pass")
		return 0, nil
	}

	processed := 0
	for _, rec := range history {
		if rec.UserID == nil {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "no_user").Inc()
			continue
		}

		episode, err := m.resolveEpisodeChain(ctx, rec)
		if errors.Is(err, identity.ErrUnresolved) {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "unresolved").Inc()
			logging.Debug().Str("title", rec.FullTitle).Msg("Skipping unresolvable episode record")
			continue
		}
		if err != nil {
			return processed, err
		}

		created, err := m.db.RecordEpisodeWatch(ctx, &models.EpisodeWatch{
			UserID:        int64(*rec.UserID),
			EpisodeID:     episode.EpisodeID,
			Started:       rec.Started,
			Stopped:       rec.Stopped,
			PauseDuration: pauseDuration(rec),
		})
		if err != nil {
			metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "invalid_watch").Inc()
			logging.Warn().Err(err).Str("title", rec.FullTitle).Msg("Dropping invalid episode watch")
			continue
		}
		if created {
			processed++
		}
	}
	return processed, nil
}

// resolveEpisodeChain resolves show, then season, then episode for one
// history record, creating whichever links are missing.
//
// A show's year is inferred from the record only for a season 1 episode 1
// watch, where the episode's air year plausibly equals the debut year.
// Other records leave the year unknown for the season metadata pass to
// fill in.
func (m *Manager) resolveEpisodeChain(ctx context.Context, rec tautulli.HistoryRecord) (*models.Episode, error) {
	if rec.GrandparentTitle == nil || *rec.GrandparentTitle == "" {
		return nil, fmt.Errorf("episode record without show title: %w", identity.ErrUnresolved)
	}

	seasonNum := seasonNumber(rec)
	if seasonNum < 0 || rec.MediaIndex == nil {
		return nil, fmt.Errorf("episode record without season/episode number: %w", identity.ErrUnresolved)
	}

	var showYear *int
	if seasonNum == 1 && *rec.MediaIndex == 1 {
		showYear = rec.Year
	}

	show, err := m.resolver.ResolveShow(ctx, identity.ShowIdentity{
		Title:     *rec.GrandparentTitle,
		Year:      showYear,
		RatingKey: intKeyToInt64(rec.GrandparentRatingKey),
	})
	if err != nil {
		return nil, err
	}

	season, err := m.resolver.ResolveSeason(ctx, show.ShowID, seasonNum,
		intKeyToInt64(rec.ParentRatingKey), nil, nil)
	if err != nil {
		return nil, err
	}

	return m.resolver.ResolveEpisode(ctx, season.SeasonID, show.ShowID,
		*rec.MediaIndex, rec.Title, intKeyToInt64(rec.RatingKey))
}

// syncSeasonMetadata walks every stored show with a rating key and fills
// in what the watch records could not carry: the show's debut year (the
// parent_year of its first season), the show poster, and per-season
// added_at timestamps.
func (m *Manager) syncSeasonMetadata(ctx context.Context) (int, error) {
	shows, err := m.db.GetShows(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, show := range shows {
		if show.RatingKey == nil {
			continue
		}

		rows, err := m.tautulli.GetLibraryMediaInfo(ctx, *show.RatingKey)
		if err != nil {
			logging.Warn().Err(err).Str("show", show.Title).Msg("Season listing unavailable this pass")
			continue
		}
		if len(rows) == 0 {
			continue
		}

		m.backfillShowFromSeason(ctx, show, rows[0])

		for _, row := range rows {
			seasonNum, err := strconv.Atoi(row.MediaIndex)
			if err != nil {
				metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "unresolved").Inc()
				continue
			}

			var ratingKey *int64
			if rk, err := strconv.ParseInt(row.RatingKey, 10, 64); err == nil {
				ratingKey = &rk
			}
			var addedAt *int64
			if at, err := strconv.ParseInt(row.AddedAt, 10, 64); err == nil {
				addedAt = &at
			}

			if _, err := m.resolver.ResolveSeason(ctx, show.ShowID, seasonNum, ratingKey, nil, addedAt); err != nil {
				if errors.Is(err, identity.ErrUnresolved) {
					metrics.SyncRecordsSkipped.WithLabelValues(SourceWatchHistory, "unresolved").Inc()
					continue
				}
				return processed, err
			}
			processed++
		}
	}
	return processed, nil
}

// backfillShowFromSeason fetches one season's metadata to learn the
// show-level fields: parent_year is the show's debut year, parent_thumb
// its poster.
func (m *Manager) backfillShowFromSeason(ctx context.Context, show *models.Show, firstSeason tautulli.LibraryMediaRow) {
	if show.Year != nil && show.Poster != nil {
		return
	}

	seasonKey, err := strconv.ParseInt(firstSeason.RatingKey, 10, 64)
	if err != nil {
		return
	}
	meta, err := m.tautulli.GetMetadata(ctx, seasonKey)
	if err != nil || meta == nil {
		return
	}

	patch := &models.Show{ShowID: show.ShowID}
	if meta.ParentYear > 0 {
		patch.Year = &meta.ParentYear
	}
	if meta.ParentThumb != "" {
		patch.Poster = &meta.ParentThumb
	}
	if err := m.db.BackfillShow(ctx, patch); err != nil {
		logging.Warn().Err(err).Str("show", show.Title).Msg("Show metadata backfill failed")
	}
}

// seasonNumber extracts the season number from a history record, trusting
// parent_media_index first and parsing "Season N" from parent_title as
// fallback. Returns -1 when neither is usable.
func seasonNumber(rec tautulli.HistoryRecord) int {
	if rec.ParentMediaIndex != nil {
		return *rec.ParentMediaIndex
	}
	if rec.ParentTitle != nil {
		fields := strings.Fields(*rec.ParentTitle)
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				return n
			}
		}
	}
	return -1
}

func pauseDuration(rec tautulli.HistoryRecord) int64 {
	if rec.PausedCounter == nil {
		return 0
	}
	return int64(*rec.PausedCounter)
}

// intKeyToInt64 widens the provider's nullable numeric rating keys.
func intKeyToInt64(v *int) *int64 {
	if v == nil {
		return nil
	}
	w := int64(*v)
	return &w
}
