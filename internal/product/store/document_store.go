package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/gocatalog/internal/document"
	"github.com/abgdnv/gocatalog/internal/entitystore"
	perrors "github.com/abgdnv/gocatalog/internal/product/errors"
)

// errNothingDeleted aborts a delete without touching the document.
var errNothingDeleted = errors.New("nothing deleted")

// DocumentStore implements ProductStore on top of a JSON document.
type DocumentStore struct {
	entities *entitystore.Store[Product]
}

var _ ProductStore = (*DocumentStore)(nil)

// NewDocumentStore creates the store and initializes the document if it does not exist.
func NewDocumentStore(ctx context.Context, backend document.Backend, logger *slog.Logger) *DocumentStore {
	return &DocumentStore{
		entities: entitystore.New(ctx, backend, productID, logger.With("collection", "products")),
	}
}

func (s *DocumentStore) Create(ctx context.Context, in ProductInput) (*Product, error) {
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	err = s.entities.Mutate(ctx, func(items []Product) ([]Product, error) {
		if codeTaken(items, product.Code, -1) {
			return nil, fmt.Errorf("%w: %s", perrors.ErrDuplicateCode, product.Code)
		}
		product.ID = s.entities.NextID(items)
		return append(items, product), nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *DocumentStore) FindAll(ctx context.Context) ([]Product, error) {
	return s.entities.Load(ctx)
}

func (s *DocumentStore) FindByID(ctx context.Context, id int) (*Product, error) {
	var found *Product
	err := s.entities.View(ctx, func(items []Product) error {
		idx := s.entities.IndexOf(items, id)
		if idx == -1 {
			return perrors.ErrProductNotFound
		}
		p := items[idx]
		found = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *DocumentStore) Update(ctx context.Context, id int, patch ProductPatch) (*Product, error) {
	var updated Product
	err := s.entities.Mutate(ctx, func(items []Product) ([]Product, error) {
		idx := s.entities.IndexOf(items, id)
		if idx == -1 {
			return nil, perrors.ErrProductNotFound
		}
		if patch.Code != nil && codeTaken(items, *patch.Code, idx) {
			return nil, fmt.Errorf("%w: %s", perrors.ErrDuplicateCode, *patch.Code)
		}
		p := items[idx]
		if err := patch.applyTo(&p); err != nil {
			return nil, err
		}
		p.ID = items[idx].ID
		items[idx] = p
		updated = p
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *DocumentStore) Delete(ctx context.Context, id int) (bool, error) {
	err := s.entities.Mutate(ctx, func(items []Product) ([]Product, error) {
		idx := s.entities.IndexOf(items, id)
		if idx == -1 {
			return nil, errNothingDeleted
		}
		return append(items[:idx], items[idx+1:]...), nil
	})
	if errors.Is(err, errNothingDeleted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// codeTaken reports whether a product other than the one at index skip uses code.
func codeTaken(items []Product, code string, skip int) bool {
	for i, p := range items {
		if i != skip && p.Code == code {
			return true
		}
	}
	return false
}
