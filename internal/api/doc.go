// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

// Package api serves the administrative HTTP surface: sync triggers and
// job polling, admin flag management, unsubscribe lists, raw table reads,
// provider connectivity checks, poster serving, and email delivery with
// live progress streaming.
//
// All JSON endpoints answer with the models.APIResponse envelope. The
// bulk email endpoint is the exception: it streams Server-Sent Events so
// the dashboard can render per-recipient progress.
package api
