// Package handler provides HTTP handlers for product-related operations.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/gocatalog/internal/product/errors"
	"github.com/abgdnv/gocatalog/internal/product/service"
	"github.com/abgdnv/gocatalog/internal/product/store"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new product Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest", "resource", "products"),
	}
}

// RegisterRoutes registers the product routes under /api/products.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{pid}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

// FindAll retrieves the list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("pid")
	h.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, id, "retrieve", err)
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in store.ProductInput
	if err := web.DecodeJSON(r, &in); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, r, "", "create", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Code", created.Code)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Update merges the request body into an existing product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("pid")
	var patch store.ProductPatch
	if err := web.DecodeJSON(r, &patch); err != nil {
		h.logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.respondServiceError(w, r, id, "update", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Delete removes a product by its ID.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("pid")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, r, id, "delete", err)
		return
	}
	h.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, id, action string, err error) {
	var validationErr *perrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.WarnContext(r.Context(), "Validation error occurred", "field", validationErr.Field, "reason", validationErr.Reason)
		web.RespondFieldError(w, h.logger, http.StatusBadRequest, validationErr.Field, validationErr.Error())
	case errors.Is(err, perrors.ErrProductNotFound):
		h.logger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.Is(err, perrors.ErrDuplicateCode):
		h.logger.WarnContext(r.Context(), "Duplicate product code", "error", err)
		web.RespondError(w, h.logger, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Error processing product request", "action", action, "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to %s product", action))
	}
}
