// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package navi

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jihop-dev/gilro/internal/logging"
	"github.com/jihop-dev/gilro/internal/metrics"
	"github.com/jihop-dev/gilro/internal/models"
)

// breakerName labels the navigation breaker in logs and metrics.
const breakerName = "kakao-navi"

// BreakerClient wraps a navigation API with circuit breaker
// protection. When the Kakao API fails repeatedly the breaker opens
// and requests are rejected immediately instead of waiting out the
// timeout; the recommendation engine then sheds candidates quickly
// rather than stalling whole requests.
//
// The breaker uses real time for its open/half-open transitions. Tests
// exercising failure behavior should drive the wrapped API directly.
type BreakerClient struct {
	api  API
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// BreakerSettings configures the circuit breaker thresholds.
type BreakerSettings struct {
	// MaxFailures is the consecutive failure count that opens the
	// circuit.
	MaxFailures uint32

	// OpenTimeout is how long the circuit stays open before allowing a
	// probe request.
	OpenTimeout time.Duration
}

// NewBreakerClient wraps api with a circuit breaker.
func NewBreakerClient(api API, settings BreakerSettings) *BreakerClient {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= settings.MaxFailures
			if trip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("navigation circuit breaker opening")
			}
			return trip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("navigation circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{api: api, cb: cb, name: breakerName}
}

// execute runs one call through the breaker, recording metrics.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult type-casts a breaker result with error checking.
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

// GetRoute implements API with breaker protection.
func (b *BreakerClient) GetRoute(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error) {
	return castResult[models.LegCost](b.execute(func() (interface{}, error) {
		return b.api.GetRoute(ctx, origin, destination)
	}))
}

// GetMultiRoutes implements API with breaker protection.
func (b *BreakerClient) GetMultiRoutes(ctx context.Context, req MultiRouteRequest) (map[string]interface{}, error) {
	return castResult[map[string]interface{}](b.execute(func() (interface{}, error) {
		return b.api.GetMultiRoutes(ctx, req)
	}))
}

// ResolveLeg adapts GetRoute to the recommendation engine's leg
// resolver contract.
func (b *BreakerClient) ResolveLeg(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error) {
	return b.GetRoute(ctx, origin, destination)
}

// stateToFloat converts a breaker state to its metric value.
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

// stateToString converts a breaker state to its log label.
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
