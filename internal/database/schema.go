// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

/*
schema.go - Database Schema Management

This file manages the DuckDB database schema including sequences, table
creation, and index management.

Tables:
  - users: media server accounts keyed by the provider's user id, with
    denormalized last-seen aggregates
  - movies, shows, seasons, episodes: deduplicated media entities; semantic
    keys (title+year, show+season_num, season+number+name) are UNIQUE so
    ingestion from either source converges on one row
  - movie_watches, episode_watches: completed viewing sessions, unique per
    full watch tuple with CHECK (started < stopped)
  - movie_requests, season_requests: request provider records keyed by
    external request id when present
  - unsubscribe_memberships: email opt-out category membership
  - sync_state: key/value store for the request high-water mark and
    automated email settings
  - schema_migrations: versioned migration tracking

Generated ids come from sequences via column DEFAULTs, so concurrent
inserts never race on MAX(id)+1. Foreign keys are plain columns enforced
by application logic; row relationships are covered by indexes instead of
FK constraints to keep idempotent re-ingestion cheap.
*/

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the sequences and core tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the sequence and table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_movie_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_show_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_season_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_episode_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_watch_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_request_id START 1`,

		// Users are keyed by the watch-history provider's id, never generated
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			friendly_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			total_duration TEXT NOT NULL DEFAULT '',
			last_seen_unix BIGINT,
			last_seen_formatted TEXT NOT NULL DEFAULT '',
			last_seen_date TEXT NOT NULL DEFAULT '',
			last_watched TEXT NOT NULL DEFAULT ''
		)`,

		// (title, year) is the semantic identity; rating_key and tmdb_id are
		// external keys backfilled when a source supplies them
		`CREATE TABLE IF NOT EXISTS movies (
			movie_id BIGINT PRIMARY KEY DEFAULT nextval('seq_movie_id'),
			title TEXT NOT NULL,
			year INTEGER,
			rating_key BIGINT UNIQUE,
			tmdb_id BIGINT UNIQUE,
			poster TEXT,
			tmdb_poster TEXT,
			added_at BIGINT,
			UNIQUE (title, year)
		)`,

		`CREATE TABLE IF NOT EXISTS shows (
			show_id BIGINT PRIMARY KEY DEFAULT nextval('seq_show_id'),
			title TEXT NOT NULL,
			year INTEGER,
			rating_key BIGINT UNIQUE,
			tvdb_id BIGINT UNIQUE,
			poster TEXT,
			tmdb_poster TEXT,
			UNIQUE (title, year)
		)`,

		`CREATE TABLE IF NOT EXISTS seasons (
			season_id BIGINT PRIMARY KEY DEFAULT nextval('seq_season_id'),
			show_id BIGINT NOT NULL,
			season_num INTEGER NOT NULL,
			episode_count INTEGER,
			rating_key BIGINT UNIQUE,
			added_at BIGINT,
			UNIQUE (show_id, season_num)
		)`,

		// show_id is denormalized for direct show-level queries
		`CREATE TABLE IF NOT EXISTS episodes (
			episode_id BIGINT PRIMARY KEY DEFAULT nextval('seq_episode_id'),
			season_id BIGINT NOT NULL,
			show_id BIGINT NOT NULL,
			rating_key BIGINT,
			number INTEGER NOT NULL,
			name TEXT NOT NULL,
			UNIQUE (season_id, number, name)
		)`,

		`CREATE TABLE IF NOT EXISTS movie_watches (
			watch_id BIGINT PRIMARY KEY DEFAULT nextval('seq_watch_id'),
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			started BIGINT NOT NULL,
			stopped BIGINT NOT NULL,
			pause_duration BIGINT NOT NULL DEFAULT 0,
			CHECK (started < stopped),
			UNIQUE (user_id, movie_id, started, stopped, pause_duration)
		)`,

		`CREATE TABLE IF NOT EXISTS episode_watches (
			watch_id BIGINT PRIMARY KEY DEFAULT nextval('seq_watch_id'),
			user_id BIGINT NOT NULL,
			episode_id BIGINT NOT NULL,
			started BIGINT NOT NULL,
			stopped BIGINT NOT NULL,
			pause_duration BIGINT NOT NULL DEFAULT 0,
			CHECK (started < stopped),
			UNIQUE (user_id, episode_id, started, stopped, pause_duration)
		)`,

		`CREATE TABLE IF NOT EXISTS movie_requests (
			request_id BIGINT PRIMARY KEY DEFAULT nextval('seq_request_id'),
			movie_id BIGINT NOT NULL,
			external_request_id BIGINT UNIQUE,
			requested_at BIGINT NOT NULL,
			status INTEGER NOT NULL,
			updated_at BIGINT,
			user_id BIGINT NOT NULL
		)`,

		// One provider request covering several seasons expands to one row
		// per season, so the external id is unique per (request, season)
		`CREATE TABLE IF NOT EXISTS season_requests (
			request_id BIGINT PRIMARY KEY DEFAULT nextval('seq_request_id'),
			season_id BIGINT NOT NULL,
			show_id BIGINT NOT NULL,
			external_request_id BIGINT,
			requested_at BIGINT NOT NULL,
			status INTEGER NOT NULL,
			updated_at BIGINT,
			user_id BIGINT NOT NULL,
			UNIQUE (external_request_id, season_id)
		)`,

		`CREATE TABLE IF NOT EXISTS unsubscribe_memberships (
			category TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			PRIMARY KEY (category, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
	}
}

// createIndexes creates indexes for row relationships and common lookups
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}

func (db *DB) getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_seasons_show ON seasons (show_id)`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_season ON episodes (season_id)`,
		`CREATE INDEX IF NOT EXISTS idx_episodes_show ON episodes (show_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_watches_user ON movie_watches (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_watches_movie ON movie_watches (movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_episode_watches_user ON episode_watches (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_episode_watches_episode ON episode_watches (episode_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movie_requests_movie ON movie_requests (movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_season_requests_show ON season_requests (show_id)`,
	}
}
