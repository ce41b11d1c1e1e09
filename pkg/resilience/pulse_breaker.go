// Package resilience provides fault tolerance patterns for external service calls.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
)

// Errors surfaced when the breaker rejects a call.
var (
	ErrCircuitOpen    = gobreaker.ErrOpenState
	ErrTooManyRequest = gobreaker.ErrTooManyRequests
)

// BreakerConfig holds configuration for a circuit breaker.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // allowed in half-open (default 3)
	Interval         time.Duration // closed-state counter reset (default 60s)
	Timeout          time.Duration // open -> half-open (default 30s)
	FailureThreshold uint32        // consecutive failures before opening (default 5)
}

// DefaultBreakerConfig returns the settings used for remote providers.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker wraps gobreaker with context-aware execution and state metrics.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker. It trips after FailureThreshold consecutive
// failures, or when at least 10 requests saw a 60% failure ratio.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	threshold := cfg.FailureThreshold
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= threshold ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithField("breaker", name).Warn("[CircuitBreaker] state changed from %s to %s", from.String(), to.String())
			metrics.SetBreakerState(name, stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the remote side.
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	metrics.SetBreakerState(cfg.Name, 0)
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// State returns the current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs fn under breaker protection with an optional per-call timeout.
func Execute[T any](ctx context.Context, b *Breaker, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if b == nil {
		return callWithTimeout(ctx, timeout, fn)
	}
	out, err := b.cb.Execute(func() (interface{}, error) {
		return callWithTimeout(ctx, timeout, fn)
	})
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
