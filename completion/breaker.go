package completion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andrewpaige1/mindcanvas-api/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds the circuit breaker thresholds.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that opens the breaker once
	// MinRequests calls have been seen.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the thresholds used in production.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Breaker fails fast while the completion service keeps failing. It never
// retries a call.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Completer, logger *zap.Logger, config BreakerConfig) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("completion breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// Cancelled calls count as successes.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, systemPrompt, userText)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state for health output.
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// WithMetrics records the outcome and latency of every call.
func WithMetrics(next Completer, collector *metrics.Collector) Completer {
	return CompleterFunc(func(ctx context.Context, systemPrompt, userText string) (string, error) {
		start := time.Now()
		out, err := next.Complete(ctx, systemPrompt, userText)

		outcome := "success"
		switch {
		case errors.Is(err, ErrUnavailable):
			outcome = "rejected"
		case err != nil:
			outcome = "failure"
		}
		collector.CompletionDone(outcome, time.Since(start))
		return out, err
	})
}
