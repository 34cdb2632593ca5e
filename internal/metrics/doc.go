// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

/*
Package metrics provides Prometheus metrics collection and export.

Metrics cover HTTP request latency, database query performance, sync pass
statistics per source, cache efficiency for both the HTTP read-through
cache and the poster cache, provider circuit breaker state, background
job counts, and email delivery outcomes.

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:4242/metrics

All metrics are registered via promauto at package init, so importing the
package is enough to make them visible to the default registry.
*/
package metrics
