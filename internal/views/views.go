// Package views renders the server side catalog pages.
package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocatalog/internal/product/store"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ProductLister is the part of the product service the pages need.
type ProductLister interface {
	FindAll(ctx context.Context) ([]store.Product, error)
}

type Handler struct {
	products  ProductLister
	templates map[string]*template.Template
	logger    *slog.Logger
}

var funcs = template.FuncMap{
	"stockClass": StockClass,
}

func NewHandler(products ProductLister, logger *slog.Logger) (*Handler, error) {
	templates := make(map[string]*template.Template)
	for _, page := range []string{"home.html", "realtimeproducts.html"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/products.html", "templates/"+page)
		if err != nil {
			return nil, err
		}
		templates[page] = t
	}
	return &Handler{
		products:  products,
		templates: templates,
		logger:    logger.With("component", "views"),
	}, nil
}

// RegisterRoutes registers the pages and their static assets.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/realtimeproducts", h.RealTimeProducts)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))
}

// Home renders the product list.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home.html", "Productos")
}

// RealTimeProducts renders the product list that refreshes over the websocket.
func (h *Handler) RealTimeProducts(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "realtimeproducts.html", "Productos en tiempo real")
}

type pageData struct {
	Title    string
	Products []store.Product
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string) {
	products, err := h.products.FindAll(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Error loading products for page", "page", page, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to load products")
		return
	}

	var buf bytes.Buffer
	if err := h.templates[page].Execute(&buf, pageData{Title: title, Products: products}); err != nil {
		h.logger.ErrorContext(r.Context(), "Error rendering page", "page", page, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// StockClass returns the css class for a stock level: "out" when empty, "low" under five units.
func StockClass(stock int) string {
	switch {
	case stock <= 0:
		return "out"
	case stock < 5:
		return "low"
	default:
		return ""
	}
}
