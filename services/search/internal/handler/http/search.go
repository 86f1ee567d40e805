package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/httputil"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/pkg/validator"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/domain"
	"github.com/volubiks-a11y/todyssc-volubiks.github.io/services/search/internal/service"
)

// CatalogVersionHeader reports which snapshot served a response.
const CatalogVersionHeader = "X-Catalog-Version"

// SearchHandler handles HTTP requests for search and catalog endpoints.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// Search handles GET /api/v1/search?q=&category=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := &domain.SearchQuery{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	result, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setVersion(w, result.CatalogVersion)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// ListProducts handles GET /api/v1/catalog/products?category=
func (h *SearchHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, version, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setVersion(w, version)
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(products))
}

// GetProduct handles GET /api/v1/catalog/products/{id}
func (h *SearchHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, version, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setVersion(w, version)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Categories handles GET /api/v1/catalog/categories
func (h *SearchHandler) Categories(w http.ResponseWriter, r *http.Request) {
	tiles, version, err := h.service.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setVersion(w, version)
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(tiles))
}

// Featured handles GET /api/v1/catalog/featured
func (h *SearchHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, version, err := h.service.Featured(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	setVersion(w, version)
	httputil.WriteJSON(w, http.StatusOK, httputil.NewListResponse(products))
}

// Refresh handles POST /api/v1/catalog/refresh
func (h *SearchHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.service.Refresh(r.Context())

	version, loadedAt, source := h.service.CatalogInfo()
	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: map[string]any{
		"status":          "refresh scheduled",
		"catalog_version": version,
		"loaded_at":       loadedAt,
		"source":          source,
	}})
}

func setVersion(w http.ResponseWriter, version uint64) {
	w.Header().Set(CatalogVersionHeader, strconv.FormatUint(version, 10))
}

func (h *SearchHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteValidationError(w, err)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
