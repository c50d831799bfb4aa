package handler

import (
	"net/http"

	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart requests. Every route requires a signed-in caller.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// View handles GET /api/cart requests.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.service.View(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Add handles POST /api/cart/items/{productID} requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID", h.logger)
	if !ok {
		return
	}

	line, err := h.service.Add(r.Context(), id, productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, line)
}

// Decrement handles POST /api/cart/lines/{lineID}/decrement requests.
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "lineID", h.logger)
	if !ok {
		return
	}

	update, err := h.service.Decrement(r.Context(), id, lineID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, update)
}

// Remove handles DELETE /api/cart/lines/{lineID} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "lineID", h.logger)
	if !ok {
		return
	}

	update, err := h.service.Remove(r.Context(), id, lineID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, update)
}
