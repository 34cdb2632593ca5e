// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package models

// UnsubscribeList is one email opt-out category and the users who opted
// out of it. Category names follow the `<category>_unsubscribe_list`
// convention (e.g. "newsletter_unsubscribe_list"); categories come into
// existence the first time a list is written under their name.
type UnsubscribeList struct {
	Category string  `json:"category"`
	UserIDs  []int64 `json:"user_ids"`
}
