// Package messaging defines the event contract shared by every notification sink.
package messaging

import (
	"context"
)

const (
	ProductsUpdatedSubject = "catalog.products.updated"
	CartsUpdatedSubject    = "catalog.carts.updated"

	// CatalogStream is the JetStream stream capturing every catalog subject.
	CatalogStream = "CATALOG"
)

// CatalogSubjects lists the subjects bound to CatalogStream.
var CatalogSubjects = []string{"catalog.>"}

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}
