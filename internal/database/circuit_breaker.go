// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/quill/internal/config"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/metrics"
	"github.com/tomtom215/quill/internal/recommend"
)

// CircuitBreakerProvider wraps a DataProvider with the circuit breaker pattern.
// While the circuit is open every call fails fast with gobreaker.ErrOpenState
// and the wrapped provider is not touched. Calls are never retried.
//
// The breaker uses real time for its interval and timeout; tests drive it
// with failures and check state, not timing.
type CircuitBreakerProvider struct {
	next recommend.DataProvider
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

var _ recommend.DataProvider = (*CircuitBreakerProvider)(nil)

// NewCircuitBreakerProvider wraps next. The circuit opens once at least
// cfg.MinRequests calls were made in the current interval and the failure
// ratio reaches cfg.FailureRatio. Context cancellation does not count as a
// failure.
func NewCircuitBreakerProvider(next recommend.DataProvider, cfg *config.BreakerConfig) *CircuitBreakerProvider {
	name := "data-provider"

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := ratio >= failureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &CircuitBreakerProvider{next: next, cb: cb, name: name}
}

// State returns the current breaker state.
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

// execute runs fn under the breaker and records the outcome.
func (p *CircuitBreakerProvider) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := p.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func (p *CircuitBreakerProvider) FetchPostsByIDs(ctx context.Context, ids []int64) ([]recommend.Post, error) {
	return castResult[[]recommend.Post](p.execute(func() (interface{}, error) {
		return p.next.FetchPostsByIDs(ctx, ids)
	}))
}

func (p *CircuitBreakerProvider) FetchPostsByTag(ctx context.Context, tagID int64, q recommend.PostQuery) ([]recommend.Post, error) {
	return castResult[[]recommend.Post](p.execute(func() (interface{}, error) {
		return p.next.FetchPostsByTag(ctx, tagID, q)
	}))
}

func (p *CircuitBreakerProvider) FetchRelatedPosts(ctx context.Context, postID int64) ([]recommend.Post, error) {
	return castResult[[]recommend.Post](p.execute(func() (interface{}, error) {
		return p.next.FetchRelatedPosts(ctx, postID)
	}))
}

func (p *CircuitBreakerProvider) FetchInteractionsForUser(ctx context.Context, userID int64) ([]recommend.Interaction, error) {
	return castResult[[]recommend.Interaction](p.execute(func() (interface{}, error) {
		return p.next.FetchInteractionsForUser(ctx, userID)
	}))
}

func (p *CircuitBreakerProvider) FetchAllPosts(ctx context.Context) ([]recommend.Post, error) {
	return castResult[[]recommend.Post](p.execute(func() (interface{}, error) {
		return p.next.FetchAllPosts(ctx)
	}))
}

func (p *CircuitBreakerProvider) FetchLatestPosts(ctx context.Context, limit int) ([]recommend.Post, error) {
	return castResult[[]recommend.Post](p.execute(func() (interface{}, error) {
		return p.next.FetchLatestPosts(ctx, limit)
	}))
}

func (p *CircuitBreakerProvider) FetchTopViewedPosts(ctx context.Context, limit int) ([]recommend.Post, error) {
	return castResult[[]recommend.Post](p.execute(func() (interface{}, error) {
		return p.next.FetchTopViewedPosts(ctx, limit)
	}))
}
