package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perrors "github.com/abgdnv/gocatalog/internal/product/errors"
	"github.com/abgdnv/gocatalog/internal/product/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product  *store.Product
	products []store.Product
	error    error

	lastInput store.ProductInput
	lastPatch store.ProductPatch
}

func (m *mockProductService) FindAll(_ context.Context) ([]store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) FindByID(_ context.Context, _ string) (*store.Product, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Create(_ context.Context, in store.ProductInput) (*store.Product, error) {
	m.lastInput = in
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Update(_ context.Context, _ string, patch store.ProductPatch) (*store.Product, error) {
	m.lastPatch = patch
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Delete(_ context.Context, _ string) error {
	return m.error
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v any) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	require.NoError(t, err)
	return string(bytes)
}

var (
	testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	mate       = store.Product{ID: 1, Title: "Mate", Description: "d", Code: "M1", Price: 9.99, Status: true,
		Stock: 5, Category: "bazar", Thumbnails: []string{}}
)

func Test_Handler_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  mockProductService{product: &mate},
			productID:    "1",
			expectedCode: http.StatusOK,
			expectedBody: `{"id":1,"title":"Mate","description":"d","code":"M1","price":9.99,"status":true,"stock":5,"category":"bazar","thumbnails":[]}`,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: perrors.ErrProductNotFound},
			productID:    "42",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product with ID 42 not found"}),
		},
		{
			name:         "Error - document unavailable",
			mockService:  mockProductService{error: errors.New("read products.json: permission denied")},
			productID:    "1",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve product"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodGet, "/api/products/"+tc.productID, nil)
			req.SetPathValue("pid", tc.productID)
			rr := httptest.NewRecorder()

			// when
			h.FindByID(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_FindAll(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - products found",
			mockService:  mockProductService{products: []store.Product{mate}},
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, []store.Product{mate}),
		},
		{
			name:         "Success - no products",
			mockService:  mockProductService{products: []store.Product{}},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("service unavailable")},
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to fetch products"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			rr := httptest.NewRecorder()

			// when
			h.FindAll(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Create(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			mockService:  mockProductService{product: &mate},
			body:         `{"title":"Mate","description":"d","code":"M1","price":"9.99","stock":"5","category":"bazar"}`,
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, mate),
		},
		{
			name:         "Error - malformed body",
			mockService:  mockProductService{product: &mate},
			body:         `{"title":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
		{
			name:         "Error - empty body",
			mockService:  mockProductService{product: &mate},
			body:         ``,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
		{
			name:         "Error - validation",
			mockService:  mockProductService{error: &perrors.ValidationError{Field: "price", Reason: "is required"}},
			body:         `{"title":"Mate"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "field price is required", Field: "price"}),
		},
		{
			name:         "Error - duplicate code",
			mockService:  mockProductService{error: fmt.Errorf("%w: M1", perrors.ErrDuplicateCode)},
			body:         `{"code":"M1"}`,
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "product code already exists: M1"}),
		},
		{
			name:         "Error - persist failure",
			mockService:  mockProductService{error: errors.New("disk full")},
			body:         `{"code":"M1"}`,
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to create product"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			h.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Create_DecodesNumericStrings(t *testing.T) {
	// given
	svc := &mockProductService{product: &mate}
	h := NewHandler(svc, testLogger)
	body := `{"title":"Mate","description":"d","code":"M1","price":"9.99","stock":5,"category":"bazar"}`
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))

	// when
	h.Create(httptest.NewRecorder(), req)

	// then
	price, err := svc.lastInput.Price.Float()
	require.NoError(t, err)
	assert.Equal(t, 9.99, price)
	stock, err := svc.lastInput.Stock.Int()
	require.NoError(t, err)
	assert.Equal(t, 5, stock)
}

func Test_Handler_Update(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product updated",
			mockService:  mockProductService{product: &mate},
			body:         `{"title":"Mate","id":99}`,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, mate),
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: perrors.ErrProductNotFound},
			body:         `{"title":"x"}`,
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product with ID 1 not found"}),
		},
		{
			name:         "Error - duplicate code",
			mockService:  mockProductService{error: perrors.ErrDuplicateCode},
			body:         `{"code":"B1"}`,
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: "product code already exists"}),
		},
		{
			name:         "Error - malformed body",
			mockService:  mockProductService{product: &mate},
			body:         `[`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodPut, "/api/products/1", strings.NewReader(tc.body))
			req.SetPathValue("pid", "1")
			rr := httptest.NewRecorder()

			// when
			h.Update(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_Delete(t *testing.T) {
	testCases := []struct {
		name         string
		mockService  mockProductService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product deleted",
			mockService:  mockProductService{},
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: perrors.ErrProductNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product with ID 3 not found"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			h := NewHandler(&tc.mockService, testLogger)
			req := httptest.NewRequest(http.MethodDelete, "/api/products/3", nil)
			req.SetPathValue("pid", "3")
			rr := httptest.NewRecorder()

			// when
			h.Delete(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody == "" {
				assert.Empty(t, rr.Body.String())
				return
			}
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func Test_Handler_RegisterRoutes(t *testing.T) {
	// given
	r := chi.NewRouter()
	NewHandler(&mockProductService{product: &mate}, testLogger).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	// when
	resp, err := http.Get(srv.URL + "/api/products/1")

	// then
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, toJSON(t, mate), string(body))
}
