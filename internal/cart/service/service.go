// Package service provides the implementation of cart-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	cerrors "github.com/abgdnv/gocatalog/internal/cart/errors"
	"github.com/abgdnv/gocatalog/internal/cart/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// CartService defines the methods for managing carts.
type CartService interface {
	// Create returns a new empty cart.
	Create(ctx context.Context) (*store.Cart, error)

	// FindByID returns ErrCartNotFound if no cart exists with the given ID.
	FindByID(ctx context.Context, id string) (*store.Cart, error)

	// AddProduct adds one unit of the product to the cart.
	// Returns ErrCartNotFound for an unknown cart and ErrInvalidProductID for a non numeric product id.
	AddProduct(ctx context.Context, cartID, productID string) (*store.Cart, error)
}

// Service implements CartService and publishes the cart list after every change.
type Service struct {
	store        store.CartStore
	publisher    messaging.Publisher
	logger       *slog.Logger
	itemsCounter metric.Int64Counter
	cartsCounter metric.Int64Counter
}

var _ CartService = (*Service)(nil)

func NewService(cartStore store.CartStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("catalog-carts")
	cartsCounter, err := meter.Int64Counter("carts_created", metric.WithDescription("Total number of created carts"))
	if err != nil {
		panic(fmt.Sprintf("failed to create carts_created counter: %v", err))
	}
	itemsCounter, err := meter.Int64Counter("cart_items_added", metric.WithDescription("Total number of product units added to carts"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_items_added counter: %v", err))
	}
	return &Service{
		store:        cartStore,
		publisher:    publisher,
		logger:       logger.With("component", "cart-service"),
		itemsCounter: itemsCounter,
		cartsCounter: cartsCounter,
	}
}

func (s *Service) Create(ctx context.Context) (*store.Cart, error) {
	created, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	s.cartsCounter.Add(ctx, 1)
	s.changed(ctx)
	return created, nil
}

func (s *Service) FindByID(ctx context.Context, id string) (*store.Cart, error) {
	cid, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", cerrors.ErrCartNotFound, id)
	}
	return s.store.FindByID(ctx, cid)
}

func (s *Service) AddProduct(ctx context.Context, cartID, productID string) (*store.Cart, error) {
	cid, err := strconv.Atoi(cartID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", cerrors.ErrCartNotFound, cartID)
	}
	pid, err := strconv.Atoi(productID)
	if err != nil || pid < 1 {
		return nil, fmt.Errorf("%w: %q", cerrors.ErrInvalidProductID, productID)
	}
	updated, err := s.store.AddProduct(ctx, cid, pid)
	if err != nil {
		return nil, err
	}
	s.itemsCounter.Add(ctx, 1)
	s.changed(ctx)
	return updated, nil
}

func (s *Service) changed(ctx context.Context) {
	carts, err := s.store.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load carts for notification", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, events.CartsUpdated(carts)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish carts update", "error", err)
	}
}
