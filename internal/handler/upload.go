package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/cloudinary"
)

// Ограничение на размер загружаемого изображения.
const maxUploadSize = 10 << 20

// UploadImage принимает multipart-файл и загружает его на хостинг изображений.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	url, err := h.service.UploadImage(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, cloudinary.ErrNotConfigured) {
			respondError(w, http.StatusInternalServerError, "image hosting not configured")
			return
		}
		h.logger.Error("upload image error", zap.Error(err), zap.String("file", header.Filename))
		respondError(w, http.StatusBadRequest, "upload failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Health возвращает статус сервиса.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
