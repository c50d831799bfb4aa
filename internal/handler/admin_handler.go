package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shopfront/internal/export"
	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AdminHandler handles catalogue, order and customer management requests.
// The router guards every route with a capability check; the service checks
// again.
type AdminHandler struct {
	service        service.AdminService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, maxUploadBytes int64, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "admin").Logger(),
	}
}

// ListProducts handles GET /api/admin/products requests.
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	products, err := h.service.ListProducts(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// CreateProduct handles multipart POST /api/admin/products requests.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	in, image, ok := h.readProductForm(w, r)
	if !ok {
		return
	}

	product, err := h.service.CreateProduct(r.Context(), id, in, image)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles multipart PUT /api/admin/products/{id} requests.
// The image part is optional.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	in, image, ok := h.readProductForm(w, r)
	if !ok {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, productID, in, image)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/admin/products/{id} requests.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id, productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportProducts handles GET /api/admin/products/export requests.
func (h *AdminHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.service.ExportProducts(r.Context(), id, &buf); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write export")
	}
}

// ListOrders handles GET /api/admin/orders requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.UpdateOrderStatus(r.Context(), id, orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListCustomers handles GET /api/admin/customers requests.
func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

// readProductForm parses the multipart product form. The returned upload,
// when present, reads from the request body and must be consumed before the
// handler returns.
func (h *AdminHandler) readProductForm(w http.ResponseWriter, r *http.Request) (*model.ProductInput, *model.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, model.NewValidationError(map[string]string{
				"image": "upload is too large",
			}), h.logger)
			return nil, nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", h.logger)
		return nil, nil, false
	}

	v := model.Validator{}
	in := &model.ProductInput{Name: r.FormValue("name")}
	in.CurrentPrice = formDecimal(v, r, "currentPrice")
	in.PreviousPrice = formDecimal(v, r, "previousPrice")

	if s := strings.TrimSpace(r.FormValue("stock")); s != "" {
		stock, err := strconv.Atoi(s)
		v.Check(err == nil, "stock", "stock must be a whole number")
		in.Stock = stock
	}
	if s := strings.TrimSpace(r.FormValue("flashSale")); s != "" {
		flash, err := strconv.ParseBool(s)
		v.Check(err == nil, "flashSale", "flash sale must be true or false")
		in.FlashSale = flash
	}

	if err := v.Err(); err != nil {
		writeServiceError(w, err, h.logger)
		return nil, nil, false
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image upload", h.logger)
		return nil, nil, false
	}

	return in, &model.Upload{Filename: header.Filename, Body: file}, true
}

// formDecimal parses a money field; an empty field is zero.
func formDecimal(v model.Validator, r *http.Request, field string) decimal.Decimal {
	s := strings.TrimSpace(r.FormValue(field))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	v.Check(err == nil, field, "must be a number")
	return d
}
