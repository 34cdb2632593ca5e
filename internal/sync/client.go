// Curatarr - Media Server Watch History and Request Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curatarr

package sync

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curatarr/internal/httpcache"
	"github.com/tomtom215/curatarr/internal/logging"
	"github.com/tomtom215/curatarr/internal/metrics"
)

// Outbound request budget per provider. Providers are self-hosted and
// tolerate bursts, so the limit mainly smooths the per-user history loop.
const (
	providerRateLimit = 10 // requests per second
	providerRateBurst = 20

	// Breaker recovery windows
	circuitInterval = time.Minute
	circuitTimeout  = 2 * time.Minute
)

// fetcher is the shared plumbing under every provider client: all reads
// go through the HTTP read-through cache, wrapped in a circuit breaker
// and an outbound rate limiter.
type fetcher struct {
	name    string
	cache   *httpcache.Cache
	breaker *gobreaker.CircuitBreaker[[]byte]
	limiter *rate.Limiter
}

// newFetcher builds the resilience stack for one named provider.
// Breaker policy: opens at a 60% failure rate over a minimum of 10
// requests, recovers through a half-open probe window.
func newFetcher(name string, cache *httpcache.Cache) *fetcher {
	metrics.SetCircuitBreakerState(name, 0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    circuitInterval,
		Timeout:     circuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			if failureRatio >= 0.6 {
				logging.Warn().Str("provider", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening provider circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("provider", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Provider circuit state change")
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})

	return &fetcher{
		name:    name,
		cache:   cache,
		breaker: cb,
		limiter: rate.NewLimiter(providerRateLimit, providerRateBurst),
	}
}

// getBytes fetches a raw response body through the cache.
func (f *fetcher) getBytes(ctx context.Context, url string, params, headers map[string]string, forceFresh bool) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := f.breaker.Execute(func() ([]byte, error) {
		return f.cache.Get(ctx, url, params, headers, forceFresh)
	})
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", f.name, err)
	}
	return body, nil
}

// getJSON fetches a response through the cache and decodes it into result.
func (f *fetcher) getJSON(ctx context.Context, url string, params, headers map[string]string, forceFresh bool, result interface{}) error {
	body, err := f.getBytes(ctx, url, params, headers, forceFresh)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", f.name, err)
	}
	return nil
}
