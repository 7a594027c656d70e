// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/taibuivan/yamdb/internal/platform/metrics"
)

// BreakerSettings tunes [BreakerSender].
type BreakerSettings struct {
	// Name labels the breaker in logs and metrics.
	Name string
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval resets failure counts while closed.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerSettings returns the settings used by the API server.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                "mail-relay",
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerSender fails fast with [ErrUnavailable] while the wrapped sender
// keeps failing.
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
	name    string
}

// NewBreakerSender wraps next with a circuit breaker.
func NewBreakerSender(next Sender, settings BreakerSettings, logger *slog.Logger) *BreakerSender {
	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit_breaker_state_changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerSender{next: next, breaker: breaker, name: settings.Name}
}

// Send implements [Sender].
func (sender *BreakerSender) Send(context context.Context, message Message) error {
	_, err := sender.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, sender.next.Send(context, message)
	})

	switch {
	case err == nil:
		metrics.RecordMailDelivery("success")
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordMailDelivery("rejected")
		return fmt.Errorf("%w: %s", ErrUnavailable, sender.name)
	default:
		metrics.RecordMailDelivery("failure")
		return err
	}
}

// State reports the current breaker state.
func (sender *BreakerSender) State() gobreaker.State {
	return sender.breaker.State()
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
