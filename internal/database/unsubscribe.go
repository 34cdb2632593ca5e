// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Unsubscribe categories are exposed as `<category>_unsubscribe_list`
// names (e.g. "newsletter_unsubscribe_list"). Membership is stored in a
// single table keyed by (category, user_id); a category exists exactly
// when it has ever been written, so new categories appear on first
// replace without schema changes.

const unsubscribeSuffix = "_unsubscribe_list"

var categoryPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// validateCategory rejects names that do not follow the
// <category>_unsubscribe_list convention.
func validateCategory(name string) error {
	if !strings.HasSuffix(name, unsubscribeSuffix) {
		return fmt.Errorf("%w: %q must end in %q", ErrInvalidCategory, name, unsubscribeSuffix)
	}
	base := strings.TrimSuffix(name, unsubscribeSuffix)
	if base == "" || !categoryPattern.MatchString(base) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}
	return nil
}

// ListUnsubscribeCategories returns every category that has ever been
// written, sorted by name.
func (db *DB) ListUnsubscribeCategories(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT category FROM unsubscribe_memberships ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsubscribe categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetUnsubscribeList returns the user ids opted out of a category, in
// ascending order. An unknown category returns an empty list, matching
// replace-creates-category semantics.
func (db *DB) GetUnsubscribeList(ctx context.Context, category string) ([]int64, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id FROM unsubscribe_memberships WHERE category = ? ORDER BY user_id`,
		category)
	if err != nil {
		return nil, fmt.Errorf("failed to read unsubscribe list %q: %w", category, err)
	}
	defer rows.Close()

	userIDs := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan unsubscribe membership: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// ReplaceUnsubscribeList atomically replaces a category's membership with
// the given user ids. Duplicates in the input collapse to one row. The
// whole replace runs in a single transaction so readers never observe a
// half-written list.
func (db *DB) ReplaceUnsubscribeList(ctx context.Context, category string, userIDs []int64) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin unsubscribe replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // No-op after commit
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM unsubscribe_memberships WHERE category = ?`, category); err != nil {
		return fmt.Errorf("failed to clear unsubscribe list %q: %w", category, err)
	}

	for _, id := range userIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO unsubscribe_memberships (category, user_id)
			VALUES (?, ?)
			ON CONFLICT DO NOTHING`, category, id); err != nil {
			return fmt.Errorf("failed to add user %d to %q: %w", id, category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit unsubscribe replace for %q: %w", category, err)
	}
	return nil
}

// IsUnsubscribed reports whether a user has opted out of a category.
func (db *DB) IsUnsubscribed(ctx context.Context, category string, userID int64) (bool, error) {
	if err := validateCategory(category); err != nil {
		return false, err
	}

	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM unsubscribe_memberships WHERE category = ? AND user_id = ?`,
		category, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check unsubscribe membership: %w", err)
	}
	return count > 0, nil
}
