package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	cerrors "github.com/abgdnv/gocatalog/internal/cart/errors"
	"github.com/abgdnv/gocatalog/internal/cart/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCartService is a mock implementation of the CartService interface
type mockCartService struct {
	cart  *store.Cart
	error error
}

func (m *mockCartService) Create(_ context.Context) (*store.Cart, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.cart, nil
}

func (m *mockCartService) FindByID(_ context.Context, _ string) (*store.Cart, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.cart, nil
}

func (m *mockCartService) AddProduct(_ context.Context, _, _ string) (*store.Cart, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.cart, nil
}

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockCartService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - cart created",
			mockService:  mockCartService{cart: &store.Cart{ID: 1, Products: []store.LineItem{}}},
			expectedCode: http.StatusCreated,
			expectedBody: `{"id":1,"products":[]}`,
		},
		{
			name:         "Error - persist failure",
			mockService:  mockCartService{error: errors.New("disk full")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to create cart"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodPost, "/api/carts", nil)
			rr := httptest.NewRecorder()
			// when
			h.Create(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockCartService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - cart found",
			mockService:  mockCartService{cart: &store.Cart{ID: 3, Products: []store.LineItem{{Product: 2, Quantity: 4}}}},
			expectedCode: http.StatusOK,
			expectedBody: `{"id":3,"products":[{"product":2,"quantity":4}]}`,
		},
		{
			name:         "Error - cart not found",
			mockService:  mockCartService{error: cerrors.ErrCartNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Cart with ID 3 not found"}`,
		},
		{
			name:         "Error - document unavailable",
			mockService:  mockCartService{error: errors.New("unexpected end of JSON input")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to retrieve cart with ID 3"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodGet, "/api/carts/3", nil)
			req.SetPathValue("cid", "3")
			rr := httptest.NewRecorder()
			// when
			h.FindByID(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_AddProduct(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockCartService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product added",
			mockService:  mockCartService{cart: &store.Cart{ID: 1, Products: []store.LineItem{{Product: 5, Quantity: 2}}}},
			productID:    "5",
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"products":[{"product":5,"quantity":2}]}`,
		},
		{
			name:         "Error - cart not found",
			mockService:  mockCartService{error: cerrors.ErrCartNotFound},
			productID:    "5",
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Cart with ID 1 not found"}`,
		},
		{
			name:         "Error - invalid product id",
			mockService:  mockCartService{error: cerrors.ErrInvalidProductID},
			productID:    "abc",
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Invalid product ID: abc"}`,
		},
		{
			name:         "Error - persist failure",
			mockService:  mockCartService{error: errors.New("read-only file system")},
			productID:    "5",
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to update cart with ID 1"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodPost, "/api/carts/1/product/"+tc.productID, nil)
			req.SetPathValue("cid", "1")
			req.SetPathValue("pid", tc.productID)
			rr := httptest.NewRecorder()
			// when
			h.AddProduct(rr, req)
			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_RegisterRoutes(t *testing.T) {
	// given
	r := chi.NewRouter()
	NewHandler(&mockCartService{cart: &store.Cart{ID: 1, Products: []store.LineItem{}}}, testLogger).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	// when
	resp, err := http.Post(srv.URL+"/api/carts/1/product/2", "application/json", nil)

	// then
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
