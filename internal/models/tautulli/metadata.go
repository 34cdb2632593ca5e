// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package tautulli

// Metadata represents the API response from Tautulli's get_metadata endpoint
type Metadata struct {
	Response MetadataResponse `json:"response"`
}

type MetadataResponse struct {
	Result  string       `json:"result"`
	Message *string      `json:"message,omitempty"`
	Data    MetadataData `json:"data"`
}

// MetadataData carries the item metadata the sync passes consume:
// added_at for library arrival times, parent_year for inferring a show's
// year from its first season, and the thumb hierarchy for poster proxying.
type MetadataData struct {
	RatingKey            string `json:"rating_key"`
	ParentRatingKey      string `json:"parent_rating_key"`
	GrandparentRatingKey string `json:"grandparent_rating_key"`
	MediaType            string `json:"media_type"`
	Title                string `json:"title"`
	ParentTitle          string `json:"parent_title"`
	GrandparentTitle     string `json:"grandparent_title"`
	MediaIndex           int    `json:"media_index"`
	ParentMediaIndex     int    `json:"parent_media_index"`
	Year                 int    `json:"year"`
	ParentYear           int    `json:"parent_year"`
	GrandparentYear      int    `json:"grandparent_year"`
	AddedAt              int64  `json:"added_at"`
	Thumb                string `json:"thumb"`
	ParentThumb          string `json:"parent_thumb"`
	GrandparentThumb     string `json:"grandparent_thumb"`
	ChildCount           int    `json:"child_count"` // Episode count for season items
}
