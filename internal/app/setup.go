// Package app wires the catalog stores, services and transports together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	cartHandler "github.com/abgdnv/gocatalog/internal/cart/handler"
	cartService "github.com/abgdnv/gocatalog/internal/cart/service"
	cartStore "github.com/abgdnv/gocatalog/internal/cart/store"
	"github.com/abgdnv/gocatalog/internal/config"
	"github.com/abgdnv/gocatalog/internal/document"
	"github.com/abgdnv/gocatalog/internal/notify"
	productHandler "github.com/abgdnv/gocatalog/internal/product/handler"
	productService "github.com/abgdnv/gocatalog/internal/product/service"
	productStore "github.com/abgdnv/gocatalog/internal/product/store"
	"github.com/abgdnv/gocatalog/internal/views"
	"github.com/abgdnv/gocatalog/pkg/bootstrap"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	natsclient "github.com/abgdnv/gocatalog/pkg/nats"
	"github.com/abgdnv/gocatalog/pkg/resilience"
	"github.com/abgdnv/gocatalog/pkg/server"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name of the catalog.
const HealthService = "catalog"

// Backends are the documents holding the two collections.
type Backends struct {
	Products document.Backend
	Carts    document.Backend
}

type Dependencies struct {
	ProductService productService.ProductService
	CartService    cartService.CartService
	// Hub is nil when websocket notifications are disabled.
	Hub    *notify.Hub
	Health *health.Server
	Logger *slog.Logger
}

// OpenBackends creates the document backends for the configured storage driver.
// The returned cleanup closes any connection opened on the way.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Backends, func(), error) {
	noop := func() {}
	s := cfg.Storage
	switch s.Driver {
	case config.DriverMemory:
		return Backends{Products: document.NewMemoryBackend(s.Products), Carts: document.NewMemoryBackend(s.Carts)}, noop, nil

	case config.DriverFile:
		return Backends{Products: document.NewFileBackend(s.Products), Carts: document.NewFileBackend(s.Carts)}, noop, nil

	case config.DriverPostgres:
		if err := document.Migrate(cfg.Database.URL); err != nil {
			return Backends{}, noop, err
		}
		logger.Info("Database migrations applied")
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return Backends{}, noop, err
		}
		logger.Info("Successfully connected to the database!")
		return Backends{
			Products: document.NewPostgresBackend(dbPool, s.Products),
			Carts:    document.NewPostgresBackend(dbPool, s.Carts),
		}, dbPool.Close, nil

	case config.DriverRedis:
		client, err := bootstrap.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return Backends{}, noop, err
		}
		logger.Info("Successfully connected to redis!", "addr", cfg.Redis.Addr)
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close redis client", "error", err)
			}
		}
		return Backends{
			Products: document.NewRedisBackend(client, cfg.Redis.Prefix, s.Products),
			Carts:    document.NewRedisBackend(client, cfg.Redis.Prefix, s.Carts),
		}, cleanup, nil
	}
	return Backends{}, noop, fmt.Errorf("unknown storage driver %q", s.Driver)
}

// OpenNatsPublisher connects to NATS, makes sure the catalog stream exists and
// returns a publisher guarded by a circuit breaker.
func OpenNatsPublisher(ctx context.Context, serviceName string, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	nc, err := natsclient.NewClient(cfg.Notify.Nats.Url, cfg.Notify.Nats.Timeout, serviceName)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.Notify.Nats.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, messaging.CatalogStream, messaging.CatalogSubjects); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Connected to NATS", "url", cfg.Notify.Nats.Url, "stream", messaging.CatalogStream)

	cb := resilience.NewCircuitBreaker("nats-publisher", cfg.Resilience.CircuitBreaker, logger)
	cleanup := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", "error", err)
		}
	}
	return resilience.NewBreakerPublisher(natsclient.NewNatsPublisher(js), cb), cleanup, nil
}

// SetupDependencies builds the stores and services. Every change is published to publisher
// and, when hub is not nil, to the websocket clients.
func SetupDependencies(ctx context.Context, backends Backends, publisher messaging.Publisher, hub *notify.Hub, logger *slog.Logger) *Dependencies {
	sinks := []messaging.Publisher{}
	if publisher != nil {
		sinks = append(sinks, publisher)
	}
	if hub != nil {
		sinks = append(sinks, hub)
	}
	sink := notify.Combine(sinks...)

	products := productStore.NewDocumentStore(ctx, backends.Products, logger)
	carts := cartStore.NewDocumentStore(ctx, backends.Carts, logger)

	hs := health.NewServer()
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)

	return &Dependencies{
		ProductService: productService.NewService(products, sink, logger),
		CartService:    cartService.NewService(carts, sink, logger),
		Hub:            hub,
		Health:         hs,
		Logger:         logger,
	}
}

// SetupHttpHandler builds the router with every route of the catalog.
// Used by E2E tests to run the application in an httptest.Server.
func SetupHttpHandler(deps *Dependencies) (http.Handler, error) {
	mux := server.NewChiRouter(deps.Logger)
	if err := wireRoutes(mux, deps); err != nil {
		return nil, err
	}
	return mux, nil
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) error {
	productHandler.NewHandler(deps.ProductService, deps.Logger).RegisterRoutes(mux)
	cartHandler.NewHandler(deps.CartService, deps.Logger).RegisterRoutes(mux)

	pages, err := views.NewHandler(deps.ProductService, deps.Logger)
	if err != nil {
		return fmt.Errorf("failed to parse view templates: %w", err)
	}
	pages.RegisterRoutes(mux)

	if deps.Hub != nil {
		mux.Handle("/ws", deps.Hub)
	}
	mux.Get("/api", apiIndex(deps.Logger))
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return nil
}

func apiIndex(logger *slog.Logger) http.HandlerFunc {
	index := map[string]any{
		"message": "Catalog API is running",
		"endpoints": map[string]string{
			"products":         "/api/products",
			"carts":            "/api/carts",
			"home":             "/",
			"realTimeProducts": "/realtimeproducts",
		},
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		web.RespondJSON(w, logger, http.StatusOK, index)
	}
}

// SetupHttpServer creates and configures the public HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) (*http.Server, error) {
	mux, err := SetupHttpHandler(deps)
	if err != nil {
		return nil, err
	}
	return server.NewHTTPServer(cfg.HTTPServer, "catalog-http", mux), nil
}

// SetupGrpcServer creates the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(deps.Logger, reflectionEnabled, server.HealthRegistration(deps.Health))
}
