// Package handler provides HTTP handlers for cart-related operations.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	cerrors "github.com/abgdnv/gocatalog/internal/cart/errors"
	"github.com/abgdnv/gocatalog/internal/cart/service"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service service.CartService
	logger  *slog.Logger
}

func NewHandler(service service.CartService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest", "resource", "carts"),
	}
}

// RegisterRoutes registers the cart routes under /api/carts.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{cid}", h.FindByID)
		r.Post("/{cid}/product/{pid}", h.AddProduct)
	})
}

// Create opens a new empty cart.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Create(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error creating cart", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create cart")
		return
	}
	h.logger.InfoContext(r.Context(), "Cart created successfully", "ID", created.ID)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// FindByID retrieves a cart with its line items.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("cid")
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, cerrors.ErrCartNotFound) {
			h.logger.WarnContext(r.Context(), "Cart not found", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Cart with ID %s not found", id))
			return
		}
		h.logger.ErrorContext(r.Context(), "Error retrieving cart", "ID", id, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve cart with ID %s", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// AddProduct adds one unit of a product to a cart.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	cartID, productID := r.PathValue("cid"), r.PathValue("pid")
	h.logger.DebugContext(r.Context(), "Received request to add product to cart", "ID", cartID, "product", productID)
	updated, err := h.service.AddProduct(r.Context(), cartID, productID)
	if err != nil {
		switch {
		case errors.Is(err, cerrors.ErrCartNotFound):
			h.logger.WarnContext(r.Context(), "Cart not found", "ID", cartID)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Cart with ID %s not found", cartID))
		case errors.Is(err, cerrors.ErrInvalidProductID):
			h.logger.WarnContext(r.Context(), "Invalid product ID", "product", productID)
			web.RespondError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("Invalid product ID: %s", productID))
		default:
			h.logger.ErrorContext(r.Context(), "Error adding product to cart", "ID", cartID, "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Sprintf("Failed to update cart with ID %s", cartID))
		}
		return
	}
	h.logger.InfoContext(r.Context(), "Product added to cart", "ID", updated.ID, "product", productID)
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}
