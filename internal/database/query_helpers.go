// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"fmt"
)

// tableAllowlist maps the table names the generic read endpoint may serve
// to the exact columns exposed for each. Table and column names are never
// taken from request input directly; the allowlist is the only source of
// identifiers interpolated into SQL.
var tableAllowlist = map[string][]string{
	"users": {
		"user_id", "username", "friendly_name", "email", "is_active", "is_admin",
		"total_duration", "last_seen_unix", "last_seen_formatted", "last_seen_date", "last_watched",
	},
	"movies":  {"movie_id", "title", "year", "rating_key", "tmdb_id", "poster", "tmdb_poster", "added_at"},
	"shows":   {"show_id", "title", "year", "rating_key", "tvdb_id", "poster", "tmdb_poster"},
	"seasons": {"season_id", "show_id", "season_num", "episode_count", "rating_key", "added_at"},
	"episodes": {
		"episode_id", "season_id", "show_id", "rating_key", "number", "name",
	},
	"movie_watches": {
		"watch_id", "user_id", "movie_id", "started", "stopped", "pause_duration",
	},
	"episode_watches": {
		"watch_id", "user_id", "episode_id", "started", "stopped", "pause_duration",
	},
	"movie_requests": {
		"request_id", "movie_id", "external_request_id", "requested_at", "status", "updated_at", "user_id",
	},
	"season_requests": {
		"request_id", "season_id", "show_id", "external_request_id", "requested_at", "status", "updated_at", "user_id",
	},
}

// AllowedTables returns the table names the generic read endpoint serves.
func AllowedTables() []string {
	names := make([]string, 0, len(tableAllowlist))
	for name := range tableAllowlist {
		names = append(names, name)
	}
	return names
}

// GetTableRows returns every row of an allowlisted table as generic maps,
// keyed by column name. Tables outside the allowlist return
// ErrUnknownTable.
func (db *DB) GetTableRows(ctx context.Context, table string) ([]map[string]interface{}, error) {
	columns, ok := tableAllowlist[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	query := "SELECT "
	for i, col := range columns {
		if i > 0 {
			query += ", "
		}
		query += col
	}
	query += " FROM " + table

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q: %w", table, err)
	}
	defer rows.Close()

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %q: %w", table, err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
