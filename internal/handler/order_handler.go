package handler

import (
	"net/http"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Place handles POST /api/orders requests. An empty body uses the phone
// number on the caller's profile.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	var req model.PlaceOrderRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req, h.logger) {
			return
		}
	}

	result, err := h.service.PlaceOrder(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// History handles GET /api/orders requests.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
