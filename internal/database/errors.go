// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/curatarr/internal/logging"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrInvalidWatch is returned when a watch record violates the
	// started < stopped invariant. Callers drop the record and continue.
	ErrInvalidWatch = errors.New("invalid watch: started must be before stopped")

	// ErrUnknownTable is returned by the allowlisted query helpers when
	// asked for a table outside the allowlist.
	ErrUnknownTable = errors.New("unknown table")

	// ErrInvalidCategory is returned for unsubscribe category names that
	// do not follow the <category>_unsubscribe_list convention.
	ErrInvalidCategory = errors.New("invalid unsubscribe category name")
)

// closeWithLog closes a resource and logs any error.
// Use this for cleanup where errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Cleanup is best-effort
	}
}
