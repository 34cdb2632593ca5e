// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

/*
Package sync ingests data from the external providers into the entity store.

Two entry points exist, one per source:

  - SyncWatchHistory pulls users and playback history from the
    watch-history provider (Tautulli), resolving every record to internal
    movie/show/season/episode ids and recording deduplicated watch rows.
  - SyncRequests pulls media requests from the request provider
    (Overseerr), filtered client-side against a persisted high-water-mark
    timestamp, and upserts request rows keyed by the provider request id.

Both passes are full-refresh and idempotent: re-running against unchanged
provider data produces zero net row changes. One bad record never aborts a
pass; it is logged, skipped, and the pass continues. Per-source mutual
exclusion guards against interleaved passes; the store's uniqueness
constraints are the backstop against concurrent creators.

Provider clients share a common plumbing layer: every read goes through
the on-disk HTTP read-through cache, behind a circuit breaker and an
outbound rate limiter.
*/
package sync
