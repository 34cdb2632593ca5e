// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package tautulli

// LibraryMediaInfo represents the API response from Tautulli's
// get_library_media_info endpoint, used to list the seasons of a show
// (rating_key scoped) with their added_at timestamps.
type LibraryMediaInfo struct {
	Response LibraryMediaInfoResponse `json:"response"`
}

type LibraryMediaInfoResponse struct {
	Result  string               `json:"result"`
	Message *string              `json:"message,omitempty"`
	Data    LibraryMediaInfoData `json:"data"`
}

type LibraryMediaInfoData struct {
	RecordsFiltered int               `json:"recordsFiltered"`
	RecordsTotal    int               `json:"recordsTotal"`
	TotalFileSize   int64             `json:"total_file_size"`
	Data            []LibraryMediaRow `json:"data"`
}

// LibraryMediaRow is one child item under the queried rating key.
// Unlike get_history, this endpoint returns rating keys and timestamps
// as strings.
type LibraryMediaRow struct {
	SectionID            int    `json:"section_id"`
	SectionType          string `json:"section_type"`
	RatingKey            string `json:"rating_key"`
	ParentRatingKey      string `json:"parent_rating_key"`
	GrandparentRatingKey string `json:"grandparent_rating_key"`
	MediaType            string `json:"media_type"`
	Title                string `json:"title"`
	SortTitle            string `json:"sort_title"`
	Year                 string `json:"year"`
	MediaIndex           string `json:"media_index"` // Season number for season rows
	AddedAt              string `json:"added_at"`    // Unix timestamp as string
	LastPlayed           string `json:"last_played"`
	Thumb                string `json:"thumb"`
}
