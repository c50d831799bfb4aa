package handler

import (
	"net/http"

	"shopfront/internal/auth"
	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	service      service.AuthService
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		secureCookie: secureCookie,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// SignUp handles POST /api/auth/sign-up requests.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	customer, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

// Login handles POST /api/auth/login requests. The session token is set as
// a cookie and also returned in the body for API clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errIsUnauthorised(err) {
			de, _ := model.AsDomainError(err)
			writeErrorCode(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, de.Message, nil, h.logger)
			return
		}
		writeServiceError(w, err, h.logger)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, h.secureCookie)
	writeJSON(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profile handles GET /api/auth/profile/{id} requests.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}
	customerID, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	customer, err := h.service.Profile(r.Context(), id, customerID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// ChangePassword handles POST /api/auth/change-password requests.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ChangePasswordRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), id, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
