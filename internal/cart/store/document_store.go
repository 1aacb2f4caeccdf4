package store

import (
	"context"
	"log/slog"

	cerrors "github.com/abgdnv/gocatalog/internal/cart/errors"
	"github.com/abgdnv/gocatalog/internal/document"
	"github.com/abgdnv/gocatalog/internal/entitystore"
)

// DocumentStore implements CartStore on top of a JSON document.
type DocumentStore struct {
	entities *entitystore.Store[Cart]
}

var _ CartStore = (*DocumentStore)(nil)

func NewDocumentStore(ctx context.Context, backend document.Backend, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		entities: entitystore.New(ctx, backend, cartID, logger.With("collection", "carts")),
	}
}

func (s *DocumentStore) Create(ctx context.Context) (*Cart, error) {
	var created Cart
	err := s.entities.Mutate(ctx, func(items []Cart) ([]Cart, error) {
		created = Cart{ID: s.entities.NextID(items), Products: []LineItem{}}
		return append(items, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *DocumentStore) FindAll(ctx context.Context) ([]Cart, error) {
	carts, err := s.entities.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range carts {
		normalize(&carts[i])
	}
	return carts, nil
}

func (s *DocumentStore) FindByID(ctx context.Context, id int) (*Cart, error) {
	var found *Cart
	err := s.entities.View(ctx, func(items []Cart) error {
		idx := s.entities.IndexOf(items, id)
		if idx == -1 {
			return cerrors.ErrCartNotFound
		}
		c := items[idx]
		normalize(&c)
		found = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *DocumentStore) AddProduct(ctx context.Context, cartID, productID int) (*Cart, error) {
	var updated Cart
	err := s.entities.Mutate(ctx, func(items []Cart) ([]Cart, error) {
		idx := s.entities.IndexOf(items, cartID)
		if idx == -1 {
			return nil, cerrors.ErrCartNotFound
		}
		normalize(&items[idx])
		items[idx].addUnit(productID)
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// normalize replaces a null line item list from a hand-edited document.
func normalize(c *Cart) {
	if c.Products == nil {
		c.Products = []LineItem{}
	}
}
