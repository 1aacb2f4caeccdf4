// Package entitystore implements a collection of records persisted as one JSON document.
//
// Every operation reloads the whole collection, applies a pure transformation and,
// for mutations, writes the whole collection back. Load-modify-persist cycles of a
// Store are serialized, so concurrent mutations within the process are never lost.
// Writers in other processes sharing the same document are not coordinated.
package entitystore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/gocatalog/internal/document"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abgdnv/gocatalog/internal/entitystore"

// ErrDocumentUnavailable marks every failure to read, parse or write the backing document.
var ErrDocumentUnavailable = errors.New("document unavailable")

// DocumentError describes a failed operation on the backing document.
// errors.Is matches both ErrDocumentUnavailable and the underlying cause.
type DocumentError struct {
	Op       string
	Document string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Document, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	return []error{ErrDocumentUnavailable, e.Err}
}

// IDFunc extracts the identifier of a record.
type IDFunc[T any] func(T) int

// Store is a collection of T kept in a document.Backend.
type Store[T any] struct {
	backend document.Backend
	idOf    IDFunc[T]
	logger  *slog.Logger
	tracer  trace.Tracer

	mu sync.RWMutex
}

// New creates a Store and makes sure its document exists.
// A failure to initialize the document is logged, not returned: the store then
// behaves as an empty collection until the backend becomes available.
func New[T any](ctx context.Context, backend document.Backend, idOf IDFunc[T], logger *slog.Logger) *Store[T] {
	s := &Store[T]{
		backend: backend,
		idOf:    idOf,
		logger:  logger.With("component", "entitystore", "document", backend.Name()),
		tracer:  otel.Tracer(tracerName),
	}
	if err := s.EnsureInitialized(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to initialize document", "error", err)
	}
	return s
}

// EnsureInitialized writes an empty collection if the document does not exist yet.
func (s *Store[T]) EnsureInitialized(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.backend.Exists(ctx)
	if err != nil {
		return &DocumentError{Op: "init", Document: s.backend.Name(), Err: err}
	}
	if exists {
		return nil
	}
	s.logger.InfoContext(ctx, "Document not found, creating empty collection")
	return s.persist(ctx, []T{})
}

// Load reads the full collection. A missing document is an empty collection;
// any other failure is returned as a *DocumentError.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx)
}

// Persist overwrites the document with items.
func (s *Store[T]) Persist(ctx context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, items)
}

// View loads the collection and passes it to fn. fn must not retain or modify items.
func (s *Store[T]) View(ctx context.Context, fn func(items []T) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(items)
}

// Mutate loads the collection, lets fn transform it and persists the result.
// If fn returns an error nothing is written and the error is returned as is.
func (s *Store[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	return s.persist(ctx, updated)
}

// NextID returns the identifier for a new record of items.
func (s *Store[T]) NextID(items []T) int {
	return NextID(items, s.idOf)
}

// IndexOf returns the position of the record with id in items, or -1.
func (s *Store[T]) IndexOf(items []T, id int) int {
	return IndexOf(items, s.idOf, id)
}

func (s *Store[T]) load(ctx context.Context) ([]T, error) {
	ctx, span := s.tracer.Start(ctx, "entitystore.load", trace.WithAttributes(attribute.String("document", s.backend.Name())))
	defer span.End()

	data, err := s.backend.Read(ctx)
	if err != nil {
		if errors.Is(err, document.ErrNotExist) {
			return []T{}, nil
		}
		return nil, s.fail(ctx, span, "load", err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, s.fail(ctx, span, "load", fmt.Errorf("malformed document: %w", err))
	}
	if items == nil {
		items = []T{}
	}
	span.SetAttributes(attribute.Int("records", len(items)))
	return items, nil
}

func (s *Store[T]) persist(ctx context.Context, items []T) error {
	ctx, span := s.tracer.Start(ctx, "entitystore.persist", trace.WithAttributes(
		attribute.String("document", s.backend.Name()),
		attribute.Int("records", len(items)),
	))
	defer span.End()

	if items == nil {
		items = []T{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return s.fail(ctx, span, "persist", err)
	}
	if err := s.backend.Write(ctx, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))); err != nil {
		return s.fail(ctx, span, "persist", err)
	}
	return nil
}

func (s *Store[T]) fail(ctx context.Context, span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	s.logger.ErrorContext(ctx, "Document operation failed", "op", op, "error", err)
	return &DocumentError{Op: op, Document: s.backend.Name(), Err: err}
}

// NextID returns 1 for an empty collection, otherwise the largest id plus one.
// Ids of deleted records are never handed out again while a larger id exists.
func NextID[T any](items []T, idOf IDFunc[T]) int {
	if len(items) == 0 {
		return 1
	}
	maxID := idOf(items[0])
	for _, it := range items[1:] {
		if id := idOf(it); id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// IndexOf returns the index of the first record whose id equals id, or -1.
func IndexOf[T any](items []T, idOf IDFunc[T], id int) int {
	for i, it := range items {
		if idOf(it) == id {
			return i
		}
	}
	return -1
}
