package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	perrors "github.com/abgdnv/gocatalog/internal/product/errors"
	"github.com/abgdnv/gocatalog/internal/product/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products   []store.Product
	product    *store.Product
	deleted    bool
	error      error
	findAllErr error
	lastID     int
}

func (m *mockProductStore) Create(_ context.Context, _ store.ProductInput) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	if m.findAllErr != nil {
		return nil, m.findAllErr
	}
	return m.products, nil
}

func (m *mockProductStore) FindByID(_ context.Context, id int) (*store.Product, error) {
	m.lastID = id
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) Update(_ context.Context, id int, _ store.ProductPatch) (*store.Product, error) {
	m.lastID = id
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductStore) Delete(_ context.Context, id int) (bool, error) {
	m.lastID = id
	if m.error != nil {
		return false, m.error
	}
	return m.deleted, nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []messaging.Event
	error  error
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return p.error
}

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func Test_ProductService_FindByID(t *testing.T) {
	testCases := []struct {
		name        string
		mockStore   *mockProductStore
		productID   string
		expectedID  int
		expected    *store.Product
		expectError error
	}{
		{
			name:       "Success - product found",
			mockStore:  &mockProductStore{product: &store.Product{ID: 7, Title: "Mate"}},
			productID:  "7",
			expectedID: 7,
			expected:   &store.Product{ID: 7, Title: "Mate"},
		},
		{
			name:        "Error - product not found",
			mockStore:   &mockProductStore{error: perrors.ErrProductNotFound},
			productID:   "2",
			expectedID:  2,
			expectError: perrors.ErrProductNotFound,
		},
		{
			name:        "Error - non numeric id is not found",
			mockStore:   &mockProductStore{product: &store.Product{ID: 1}},
			productID:   "abc",
			expectError: perrors.ErrProductNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := NewService(tc.mockStore, &recordingPublisher{}, testLogger)
			// when
			found, err := svc.FindByID(context.Background(), tc.productID)
			// then
			assert.Equal(t, tc.expectedID, tc.mockStore.lastID)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, found)
		})
	}
}

func Test_ProductService_Create(t *testing.T) {
	products := []store.Product{{ID: 1, Code: "A"}}
	storeErr := errors.New("disk full")
	testCases := []struct {
		name           string
		mockStore      *mockProductStore
		publisher      *recordingPublisher
		expectError    error
		expectedEvents int
	}{
		{
			name:           "Success - publishes the full list",
			mockStore:      &mockProductStore{product: &products[0], products: products},
			publisher:      &recordingPublisher{},
			expectedEvents: 1,
		},
		{
			name:           "Success - publish failure is not returned",
			mockStore:      &mockProductStore{product: &products[0], products: products},
			publisher:      &recordingPublisher{error: errors.New("broker down")},
			expectedEvents: 1,
		},
		{
			name:           "Success - list failure skips the notification",
			mockStore:      &mockProductStore{product: &products[0], findAllErr: storeErr},
			publisher:      &recordingPublisher{},
			expectedEvents: 0,
		},
		{
			name:           "Error - store failure",
			mockStore:      &mockProductStore{error: storeErr},
			publisher:      &recordingPublisher{},
			expectError:    storeErr,
			expectedEvents: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			svc := NewService(tc.mockStore, tc.publisher, testLogger)
			// when
			created, err := svc.Create(context.Background(), store.ProductInput{})
			// then
			require.Len(t, tc.publisher.events, tc.expectedEvents)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &products[0], created)
			if tc.expectedEvents > 0 {
				event, ok := tc.publisher.events[0].(events.CollectionUpdatedEvent)
				require.True(t, ok)
				assert.Equal(t, events.UpdateProducts, event.Name)
				assert.Equal(t, products, event.Data)
			}
		})
	}
}

func Test_ProductService_Update(t *testing.T) {
	// given
	mockStore := &mockProductStore{product: &store.Product{ID: 3, Title: "new"}}
	publisher := &recordingPublisher{}
	svc := NewService(mockStore, publisher, testLogger)
	title := "new"

	// when
	updated, err := svc.Update(context.Background(), "3", store.ProductPatch{Title: &title})

	// then
	require.NoError(t, err)
	assert.Equal(t, 3, mockStore.lastID)
	assert.Equal(t, "new", updated.Title)
	assert.Len(t, publisher.events, 1)

	// and a non numeric id never reaches the store
	_, err = svc.Update(context.Background(), "x1", store.ProductPatch{})
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
	assert.Len(t, publisher.events, 1)
}

func Test_ProductService_Delete(t *testing.T) {
	testCases := []struct {
		name           string
		mockStore      *mockProductStore
		id             string
		expectError    error
		expectedEvents int
	}{
		{name: "Success - deleted", mockStore: &mockProductStore{deleted: true}, id: "1", expectedEvents: 1},
		{name: "Error - nothing deleted", mockStore: &mockProductStore{deleted: false}, id: "1", expectError: perrors.ErrProductNotFound},
		{name: "Error - invalid id", mockStore: &mockProductStore{deleted: true}, id: "one", expectError: perrors.ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			publisher := &recordingPublisher{}
			svc := NewService(tc.mockStore, publisher, testLogger)
			// when
			err := svc.Delete(context.Background(), tc.id)
			// then
			assert.Len(t, publisher.events, tc.expectedEvents)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
		})
	}
}
