package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shopfront/internal/auth"
	"shopfront/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	code := model.ErrCodeInternalError
	switch status {
	case http.StatusBadRequest:
		code = model.ErrCodeValidation
	case http.StatusNotFound:
		code = model.ErrCodeNotFound
	case http.StatusUnauthorized:
		code = model.ErrCodeUnauthorised
	}
	writeErrorCode(w, status, code, message, nil, logger)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, fields map[string]string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Str("code", code).Int("status", status).Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message, Fields: fields})
}

// domainStatus maps domain error codes to HTTP statuses. Authorization
// failures on resources answer 404 so callers cannot probe for existence.
var domainStatus = map[string]int{
	model.ErrCodeNotFound:          http.StatusNotFound,
	model.ErrCodeUnauthorised:      http.StatusNotFound,
	model.ErrCodeValidation:        http.StatusBadRequest,
	model.ErrCodeInsufficientStock: http.StatusConflict,
	model.ErrCodePayment:           http.StatusPaymentRequired,
	model.ErrCodeEmptyCart:         http.StatusBadRequest,
	model.ErrCodeInvalidState:      http.StatusBadRequest,
	model.ErrCodePersistence:       http.StatusConflict,
}

// writeServiceError writes err as a domain error response, or as a generic
// 500 when err carries no domain error.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().Err(err).Msg("unexpected service error")
		writeErrorCode(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", nil, logger)
		return
	}

	status, known := domainStatus[de.Code]
	if !known {
		status = http.StatusInternalServerError
	}

	code, message := de.Code, de.Message
	if de.Code == model.ErrCodeUnauthorised {
		code, message = model.ErrCodeNotFound, "Resource not found"
	}
	if de.Err != nil {
		logger.Debug().Err(de.Err).Str("code", de.Code).Msg("domain error cause")
	}

	writeErrorCode(w, status, code, message, de.Fields, logger)
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", nil, logger)
		return false
	}
	return true
}

// pathID parses the named path value as a positive integer ID. Malformed IDs
// are reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "resource not found", logger)
		return 0, false
	}
	return id, true
}

// requireIdentity returns the caller's identity or answers 401.
func requireIdentity(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Identity, bool) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", logger)
		return model.Identity{}, false
	}
	return id, true
}

// errIsUnauthorised reports whether err is an authorization failure.
func errIsUnauthorised(err error) bool {
	return errors.Is(err, model.ErrUnauthorised)
}
