// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package source

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tomtom215/wayfinder/internal/config"
	"github.com/tomtom215/wayfinder/internal/logging"
	"github.com/tomtom215/wayfinder/internal/metrics"
	"github.com/tomtom215/wayfinder/internal/recommend"
)

// Breaker wraps a data source with the circuit breaker pattern.
// After FailureThreshold consecutive failed fetches the circuit opens and
// fetches are rejected without touching the backend until Timeout elapses.
//
// Caller cancellation is not counted against the backend.
type Breaker struct {
	next recommend.DataProvider
	cb   *gobreaker.CircuitBreaker[[]recommend.Interaction]
	name string
}

// NewBreaker wraps next. name labels the breaker in logs and metrics.
func NewBreaker(name string, next recommend.DataProvider, cfg config.BreakerConfig) *Breaker {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]recommend.Interaction](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			shouldTrip := counts.ConsecutiveFailures >= threshold
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
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

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},

		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{next: next, cb: cb, name: name}
}

// GetInteractions implements recommend.DataProvider.
func (b *Breaker) GetInteractions(ctx context.Context) ([]recommend.Interaction, error) {
	interactions, err := b.cb.Execute(func() ([]recommend.Interaction, error) {
		return b.next.GetInteractions(ctx)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%s: %w", b.name, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return interactions, nil
}

// State returns the current circuit state as "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// Close closes the wrapped source when it holds resources.
func (b *Breaker) Close() error {
	if c, ok := b.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
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

var _ recommend.DataProvider = (*Breaker)(nil)
