// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	perrors "github.com/abgdnv/gocatalog/internal/product/errors"
	"github.com/abgdnv/gocatalog/internal/product/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// ProductService defines the methods for managing products.
// Identifiers arrive as path strings; one that is not an integer never matches a product.
type ProductService interface {
	// FindAll returns all products in insertion order.
	FindAll(ctx context.Context) ([]store.Product, error)

	// FindByID returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*store.Product, error)

	// Create validates and stores a new product.
	Create(ctx context.Context, in store.ProductInput) (*store.Product, error)

	// Update merges patch into an existing product.
	Update(ctx context.Context, id string, patch store.ProductPatch) (*store.Product, error)

	// Delete returns ErrProductNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error
}

// Service implements ProductService and publishes the product list after every change.
type Service struct {
	store           store.ProductStore
	publisher       messaging.Publisher
	logger          *slog.Logger
	createdCounter  metric.Int64Counter
	mutationCounter metric.Int64Counter
}

var _ ProductService = (*Service)(nil)

// NewService creates a new instance of ProductService.
func NewService(productStore store.ProductStore, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("catalog-products")
	createdCounter, err := meter.Int64Counter("products_created", metric.WithDescription("Total number of created products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	mutationCounter, err := meter.Int64Counter("products_mutations", metric.WithDescription("Total number of persisted product changes"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_mutations counter: %v", err))
	}
	return &Service{
		store:           productStore,
		publisher:       publisher,
		logger:          logger.With("component", "product-service"),
		createdCounter:  createdCounter,
		mutationCounter: mutationCounter,
	}
}

func (s *Service) FindAll(ctx context.Context) ([]store.Product, error) {
	return s.store.FindAll(ctx)
}

func (s *Service) FindByID(ctx context.Context, id string) (*store.Product, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, pid)
}

func (s *Service) Create(ctx context.Context, in store.ProductInput) (*store.Product, error) {
	created, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.createdCounter.Add(ctx, 1)
	s.changed(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, patch store.ProductPatch) (*store.Product, error) {
	pid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, pid, patch)
	if err != nil {
		return nil, err
	}
	s.changed(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	pid, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.store.Delete(ctx, pid)
	if err != nil {
		return err
	}
	if !deleted {
		return perrors.ErrProductNotFound
	}
	s.changed(ctx)
	return nil
}

// changed publishes the current product list. Failures are logged, the mutation already succeeded.
func (s *Service) changed(ctx context.Context) {
	s.mutationCounter.Add(ctx, 1)
	products, err := s.store.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load products for notification", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, events.ProductsUpdated(products)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish products update", "error", err)
	}
}

func parseID(id string) (int, error) {
	pid, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", perrors.ErrProductNotFound, id)
	}
	return pid, nil
}
