package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

type verifyCodeRequest struct {
	Code string `json:"code"`
}

type verifyCodeResponse struct {
	Granted bool   `json:"granted"`
	Kind    string `json:"kind"`
	Token   string `json:"token"`
}

// VerifyCode проверяет код доступа и выдаёт короткоживущий операторский токен,
// чтобы последующие запросы проверялись сервером, а не состоянием клиента.
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := h.service.VerifyAccessCode(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAccessCode) {
			respondError(w, http.StatusUnauthorized, "invalid or expired code")
			return
		}
		h.logger.Error("verify access code error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.authMiddleware.IssueGrantToken(kind)
	if err != nil {
		h.logger.Error("issue grant token error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, verifyCodeResponse{Granted: true, Kind: kind, Token: token})
}

type accessCodePayload struct {
	ID        string `json:"id,omitempty"`
	Label     string `json:"label"`
	Code      string `json:"code"`
	ExpiresAt string `json:"expires_at"`
	IsActive  bool   `json:"is_active"`
}

func newAccessCodePayload(ac *model.AccessCode) accessCodePayload {
	return accessCodePayload{
		ID:        ac.ID,
		Label:     ac.Label,
		Code:      ac.Code,
		ExpiresAt: formatTime(ac.ExpiresAt),
		IsActive:  ac.IsActive,
	}
}

// ListAccessCodes возвращает все коды доступа, включая истёкшие.
func (h *Handler) ListAccessCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.ListAccessCodes(r.Context())
	if err != nil {
		h.logger.Error("list access codes error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]accessCodePayload, 0, len(codes))
	for i := range codes {
		resp = append(resp, newAccessCodePayload(&codes[i]))
	}

	respondJSON(w, http.StatusOK, resp)
}

type createAccessCodeRequest struct {
	Label      string `json:"label"`
	Code       string `json:"code"`
	ValidHours int    `json:"valid_hours"`
}

// CreateAccessCode создаёт код доступа с окном действия в часах.
func (h *Handler) CreateAccessCode(w http.ResponseWriter, r *http.Request) {
	var req createAccessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ac, err := h.service.CreateAccessCode(r.Context(), req.Label, req.Code, req.ValidHours)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			respondError(w, http.StatusBadRequest, "label and code required")
			return
		}
		h.logger.Error("create access code error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, newAccessCodePayload(ac))
}

type toggleAccessCodeRequest struct {
	IsActive bool `json:"is_active"`
}

// ToggleAccessCode включает или выключает код доступа.
func (h *Handler) ToggleAccessCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req toggleAccessCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ToggleAccessCode(r.Context(), id, req.IsActive); err != nil {
		if errors.Is(err, repository.ErrAccessCodeNotFound) {
			respondError(w, http.StatusNotFound, "access code not found")
			return
		}
		h.logger.Error("toggle access code error", zap.Error(err), zap.String("code", id))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteAccessCode удаляет код доступа.
func (h *Handler) DeleteAccessCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteAccessCode(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAccessCodeNotFound) {
			respondError(w, http.StatusNotFound, "access code not found")
			return
		}
		h.logger.Error("delete access code error", zap.Error(err), zap.String("code", id))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
