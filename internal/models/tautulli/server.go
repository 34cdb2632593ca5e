// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package tautulli

// Libraries represents the API response from Tautulli's get_libraries
// endpoint. Connectivity checks only inspect the result field; the rows
// are kept for completeness.
type Libraries struct {
	Response LibrariesResponse `json:"response"`
}

type LibrariesResponse struct {
	Result  string       `json:"result"`
	Message *string      `json:"message,omitempty"`
	Data    []LibraryRow `json:"data"`
}

type LibraryRow struct {
	SectionID   int    `json:"section_id"`
	SectionName string `json:"section_name"`
	SectionType string `json:"section_type"`
	Count       int    `json:"count"`
	IsActive    int    `json:"is_active"`
}
