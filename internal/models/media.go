// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package models

// MediaKind discriminates media entity types in poster lookups and
// request records.
type MediaKind string

const (
	MediaKindMovie   MediaKind = "movie"
	MediaKindShow    MediaKind = "show"
	MediaKindSeason  MediaKind = "season"
	MediaKindEpisode MediaKind = "episode"
)

// Valid reports whether k is one of the known media kinds.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaKindMovie, MediaKindShow, MediaKindSeason, MediaKindEpisode:
		return true
	}
	return false
}

// Movie represents a row in the movies table. The semantic identity of a
// movie is (Title, Year); RatingKey and TMDBID are external keys backfilled
// when a source supplies them. Poster is the media server's image proxy
// path; TMDBPoster is the catalog provider's CDN poster path. AddedAt is
// when the movie entered the media server library.
type Movie struct {
	MovieID    int64   `json:"movie_id"`
	Title      string  `json:"title"`
	Year       *int    `json:"year"`
	RatingKey  *int64  `json:"rating_key"`
	TMDBID     *int64  `json:"tmdb_id"`
	Poster     *string `json:"poster"`
	TMDBPoster *string `json:"tmdb_poster"`
	AddedAt    *int64  `json:"added_at"`
}

// Show represents a row in the shows table. Identity semantics mirror
// Movie: (Title, Year) is the semantic key, RatingKey and TVDBID are
// backfilled external keys. Year may arrive late (inferred from season 1
// metadata) and is never overwritten once set.
type Show struct {
	ShowID     int64   `json:"show_id"`
	Title      string  `json:"title"`
	Year       *int    `json:"year"`
	RatingKey  *int64  `json:"rating_key"`
	TVDBID     *int64  `json:"tvdb_id"`
	Poster     *string `json:"poster"`
	TMDBPoster *string `json:"tmdb_poster"`
}

// Season represents a row in the seasons table, unique per
// (ShowID, SeasonNum).
type Season struct {
	SeasonID     int64  `json:"season_id"`
	ShowID       int64  `json:"show_id"`
	SeasonNum    int    `json:"season_num"`
	EpisodeCount *int   `json:"episode_count"`
	RatingKey    *int64 `json:"rating_key"`
	AddedAt      *int64 `json:"added_at"`
}

// Episode represents a row in the episodes table, unique per
// (SeasonID, Number, Name). ShowID is denormalized for direct
// show-level queries.
type Episode struct {
	EpisodeID int64  `json:"episode_id"`
	SeasonID  int64  `json:"season_id"`
	ShowID    int64  `json:"show_id"`
	RatingKey *int64 `json:"rating_key"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
}
