// Package resilience guards calls to flaky dependencies with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"log/slog"

	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/sony/gobreaker/v2"
)

// NewCircuitBreaker builds a breaker that opens after cfg.ConsecutiveFailures failures in a row,
// or when the failure rate exceeds cfg.ErrorRatePercent once enough calls have been seen.
// Cancelled calls are not counted as failures of the dependency.
func NewCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[any] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return gobreaker.NewCircuitBreaker[any](st)
}

// BreakerPublisher publishes through next while the breaker is closed and fails fast while it is open.
type BreakerPublisher struct {
	next messaging.Publisher
	cb   *gobreaker.CircuitBreaker[any]
}

var _ messaging.Publisher = (*BreakerPublisher)(nil)

func NewBreakerPublisher(next messaging.Publisher, cb *gobreaker.CircuitBreaker[any]) *BreakerPublisher {
	return &BreakerPublisher{next: next, cb: cb}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event messaging.Event) error {
	_, err := p.cb.Execute(func() (any, error) {
		return nil, p.next.Publish(ctx, event)
	})
	return err
}
