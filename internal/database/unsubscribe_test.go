// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"context"
	"errors"
	"testing"
)

func TestReplaceThenReadUnsubscribeList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.ReplaceUnsubscribeList(ctx, "newsletter_unsubscribe_list", []int64{1, 3})
	if err != nil {
		t.Fatalf("ReplaceUnsubscribeList failed: %v", err)
	}

	got, err := db.GetUnsubscribeList(ctx, "newsletter_unsubscribe_list")
	if err != nil {
		t.Fatalf("GetUnsubscribeList failed: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("expected [1 3], got %v", got)
	}

	// Replace is total: previous members not in the new list are removed
	if err := db.ReplaceUnsubscribeList(ctx, "newsletter_unsubscribe_list", []int64{3, 5, 5}); err != nil {
		t.Fatalf("second ReplaceUnsubscribeList failed: %v", err)
	}
	got, err = db.GetUnsubscribeList(ctx, "newsletter_unsubscribe_list")
	if err != nil {
		t.Fatalf("GetUnsubscribeList after replace failed: %v", err)
	}
	if len(got) != 2 || got[0] != 3 || got[1] != 5 {
		t.Errorf("expected [3 5] with duplicate collapsed, got %v", got)
	}
}

func TestUnsubscribeCategoriesAppearOnFirstWrite(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	categories, err := db.ListUnsubscribeCategories(ctx)
	if err != nil {
		t.Fatalf("ListUnsubscribeCategories failed: %v", err)
	}
	if len(categories) != 0 {
		t.Fatalf("expected no categories initially, got %v", categories)
	}

	// Reading an unknown category yields an empty list, not an error
	got, err := db.GetUnsubscribeList(ctx, "requested_content_unsubscribe_list")
	if err != nil {
		t.Fatalf("GetUnsubscribeList for unknown category failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}

	if err := db.ReplaceUnsubscribeList(ctx, "requested_content_unsubscribe_list", []int64{8}); err != nil {
		t.Fatalf("ReplaceUnsubscribeList failed: %v", err)
	}
	categories, err = db.ListUnsubscribeCategories(ctx)
	if err != nil {
		t.Fatalf("ListUnsubscribeCategories after write failed: %v", err)
	}
	if len(categories) != 1 || categories[0] != "requested_content_unsubscribe_list" {
		t.Errorf("unexpected categories: %v", categories)
	}

	unsubscribed, err := db.IsUnsubscribed(ctx, "requested_content_unsubscribe_list", 8)
	if err != nil {
		t.Fatalf("IsUnsubscribed failed: %v", err)
	}
	if !unsubscribed {
		t.Error("expected user 8 to be unsubscribed")
	}
}

func TestUnsubscribeCategoryValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// Missing suffix, empty base, invalid characters, injection attempt
	tests := []string{
		"newsletter",
		"_unsubscribe_list",
		"News Letter_unsubscribe_list",
		"x; DROP TABLE y_unsubscribe_list??",
	}
	for _, name := range tests {
		if err := db.ReplaceUnsubscribeList(ctx, name, []int64{1}); !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("ReplaceUnsubscribeList(%q) = %v, want ErrInvalidCategory", name, err)
		}
		if _, err := db.GetUnsubscribeList(ctx, name); !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("GetUnsubscribeList(%q) = %v, want ErrInvalidCategory", name, err)
		}
	}
}
