// Package events holds the catalog events published after every change of a collection.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gocatalog/pkg/messaging"
)

const (
	UpdateProducts = "updateProducts"
	UpdateCarts    = "updateCarts"
)

// CollectionUpdatedEvent carries the full state of a collection after a change.
// The payload is {"event": <name>, "data": [...], "at": <time>}.
type CollectionUpdatedEvent struct {
	subject string
	Name    string    `json:"event"`
	Data    any       `json:"data"`
	At      time.Time `json:"at"`
}

// ProductsUpdated is emitted with the full product list.
func ProductsUpdated(products any) CollectionUpdatedEvent {
	return CollectionUpdatedEvent{
		subject: messaging.ProductsUpdatedSubject,
		Name:    UpdateProducts,
		Data:    products,
		At:      time.Now().UTC(),
	}
}

// CartsUpdated is emitted with the full cart list.
func CartsUpdated(carts any) CollectionUpdatedEvent {
	return CollectionUpdatedEvent{
		subject: messaging.CartsUpdatedSubject,
		Name:    UpdateCarts,
		Data:    carts,
		At:      time.Now().UTC(),
	}
}

func (e CollectionUpdatedEvent) Subject() string {
	return e.subject
}

func (e CollectionUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
