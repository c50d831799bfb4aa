package handler

import (
	"net/http"
	"strconv"
	"strings"

	"shopfront/internal/auth"
	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles public product requests.
type CatalogHandler struct {
	catalog service.CatalogService
	cart    service.CartService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler. cart is used to show the
// signed-in caller's totals on the home page.
func NewCatalogHandler(catalog service.CatalogService, cart service.CartService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		cart:    cart,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// HomeResponse is the home page payload.
type HomeResponse struct {
	Products []model.Product  `json:"products"`
	Cart     *model.CartTotals `json:"cart,omitempty"`
}

// Home handles GET /api/home requests.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Home(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	resp := HomeResponse{Products: products}
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		totals, err := h.cart.Totals(r.Context(), id)
		if err != nil {
			writeServiceError(w, err, h.logger)
			return
		}
		resp.Cart = &totals
	}

	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /api/products requests with pagination.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 0 // service default
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", h.logger)
			return
		}
	}

	offset := 0 // default
	if offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset parameter", h.logger)
			return
		}
	}

	products, err := h.catalog.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id} requests.
func (h *CatalogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.catalog.GetByID(r.Context(), productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Search handles GET /api/search?q= and form-encoded POST /api/search
// requests with a "search" field.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body", h.logger)
			return
		}
		term = r.PostForm.Get("search")
	}

	products, err := h.catalog.Search(r.Context(), strings.TrimSpace(term))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}
