package notify

import (
	"context"
	"errors"

	"github.com/abgdnv/gocatalog/pkg/messaging"
)

// Multi publishes every event to all of its publishers and joins their errors.
type Multi []messaging.Publisher

func (m Multi) Publish(ctx context.Context, event messaging.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, messaging.Event) error { return nil }

// Combine returns the single publisher, Nop for none, or a Multi.
func Combine(publishers ...messaging.Publisher) messaging.Publisher {
	switch len(publishers) {
	case 0:
		return Nop{}
	case 1:
		return publishers[0]
	default:
		return Multi(publishers)
	}
}
