package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"shopfront/internal/storage"

	"github.com/rs/zerolog"
)

// MediaHandler serves product images from the media store.
type MediaHandler struct {
	store  storage.Store
	logger zerolog.Logger
}

// NewMediaHandler creates a new media handler.
func NewMediaHandler(store storage.Store, logger zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		store:  store,
		logger: logger.With().Str("handler", "media").Logger(),
	}
}

// Get handles GET /media/{filename} requests.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name == "" || name != storage.SanitizeFilename(name) {
		writeError(w, http.StatusNotFound, "media file not found", h.logger)
		return
	}

	body, err := h.store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media file not found", h.logger)
			return
		}
		h.logger.Error().Err(err).Str("filename", name).Msg("failed to open media file")
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn().Err(err).Str("filename", name).Msg("failed to stream media file")
	}
}
