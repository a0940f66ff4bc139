package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

// ListUsers возвращает всех пользователей для панели администратора.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, newUserResponse(&users[i]))
	}

	respondJSON(w, http.StatusOK, map[string][]userResponse{"users": resp})
}

type manageUsersRequest struct {
	Action   string `json:"action"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// ManageUsers выполняет административные действия над пользователями:
// list, add_role, remove_role, create, delete.
func (h *Handler) ManageUsers(w http.ResponseWriter, r *http.Request) {
	var req manageUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "list":
		h.ListUsers(w, r)

	case "add_role", "remove_role":
		if req.UserID == "" || req.Role == "" {
			respondError(w, http.StatusBadRequest, "user_id and role required")
			return
		}
		var err error
		if req.Action == "add_role" {
			err = h.service.AddUserRole(r.Context(), req.UserID, req.Role)
		} else {
			err = h.service.RemoveUserRole(r.Context(), req.UserID, req.Role)
		}
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			h.logger.Error("manage role error", zap.Error(err), zap.String("target", req.UserID))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})

	case "create":
		if req.Email == "" || req.Password == "" {
			respondError(w, http.StatusBadRequest, "email and password required")
			return
		}
		u, err := h.service.RegisterUser(r.Context(), req.Email, req.Password, req.Name, "")
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrUserExists):
				respondError(w, http.StatusBadRequest, "user already exists")
			case errors.Is(err, service.ErrInvalidPayload):
				respondError(w, http.StatusBadRequest, "email and password required")
			default:
				h.logger.Error("admin create user error", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "user": newUserResponse(u)})

	case "delete":
		if req.UserID == "" {
			respondError(w, http.StatusBadRequest, "user_id required")
			return
		}
		if err := h.service.DeleteUser(r.Context(), req.UserID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				respondError(w, http.StatusNotFound, "user not found")
				return
			}
			h.logger.Error("admin delete user error", zap.Error(err), zap.String("target", req.UserID))
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		respondError(w, http.StatusBadRequest, "invalid action")
	}
}
