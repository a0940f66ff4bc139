package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/middleware"
	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

type addressPayload struct {
	ID          string `json:"id,omitempty"`
	Label       string `json:"label"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	IsDefault   bool   `json:"is_default"`
}

func newAddressPayload(a *model.Address) addressPayload {
	return addressPayload{
		ID:          a.ID,
		Label:       a.Label,
		AddressLine: a.AddressLine,
		City:        a.City,
		State:       a.State,
		Pincode:     a.Pincode,
		IsDefault:   a.IsDefault,
	}
}

// GetAddresses возвращает адреса текущего пользователя.
func (h *Handler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addresses, err := h.service.GetAddressesByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get addresses error", zap.Error(err), zap.String("userID", userID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]addressPayload, 0, len(addresses))
	for i := range addresses {
		resp = append(resp, newAddressPayload(&addresses[i]))
	}

	respondJSON(w, http.StatusOK, resp)
}

// CreateAddress сохраняет новый адрес текущего пользователя.
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req addressPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.service.CreateAddress(r.Context(), &model.Address{
		UserID:      userID,
		Label:       req.Label,
		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			respondError(w, http.StatusBadRequest, "invalid address")
			return
		}
		h.logger.Error("create address error", zap.Error(err), zap.String("userID", userID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, newAddressPayload(a))
}

// SetDefaultAddress делает адрес адресом по умолчанию.
func (h *Handler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addressID := chi.URLParam(r, "id")

	if err := h.service.SetDefaultAddress(r.Context(), userID, addressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			respondError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("set default address error", zap.Error(err), zap.String("address", addressID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAddress удаляет адрес текущего пользователя.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addressID := chi.URLParam(r, "id")

	if err := h.service.DeleteAddress(r.Context(), userID, addressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			respondError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("delete address error", zap.Error(err), zap.String("address", addressID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
