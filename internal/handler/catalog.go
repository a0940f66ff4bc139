package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/razorpay"
	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

type categoryPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
}

func newCategoryPayload(c *model.Category) categoryPayload {
	return categoryPayload{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		SortOrder:   c.SortOrder,
	}
}

// GetCategories возвращает разделы меню.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("list categories error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]categoryPayload, 0, len(categories))
	for i := range categories {
		resp = append(resp, newCategoryPayload(&categories[i]))
	}

	respondJSON(w, http.StatusOK, resp)
}

// CreateCategory создаёт раздел меню.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.service.CreateCategory(r.Context(), &model.Category{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			respondError(w, http.StatusBadRequest, "name required")
			return
		}
		h.logger.Error("create category error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, newCategoryPayload(c))
}

// UpdateCategory обновляет раздел меню.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req categoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.service.UpdateCategory(r.Context(), &model.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPayload):
			respondError(w, http.StatusBadRequest, "name required")
		case errors.Is(err, repository.ErrCategoryNotFound):
			respondError(w, http.StatusNotFound, "category not found")
		default:
			h.logger.Error("update category error", zap.Error(err), zap.String("category", id))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteCategory удаляет раздел меню.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		h.logger.Error("delete category error", zap.Error(err), zap.String("category", id))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type productPayload struct {
	ID          string  `json:"id,omitempty"`
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	IsVeg       bool    `json:"is_veg"`
	IsAvailable bool    `json:"is_available"`
	SortOrder   int     `json:"sort_order"`
}

func newProductPayload(p *model.Product) productPayload {
	return productPayload{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       paiseToRupees(p.PricePaise),
		ImageURL:    p.ImageURL,
		IsVeg:       p.IsVeg,
		IsAvailable: p.IsAvailable,
		SortOrder:   p.SortOrder,
	}
}

func (req *productPayload) toModel(id string) *model.Product {
	return &model.Product{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		PricePaise:  razorpay.ToMinorUnits(req.Price),
		ImageURL:    req.ImageURL,
		IsVeg:       req.IsVeg,
		IsAvailable: req.IsAvailable,
		SortOrder:   req.SortOrder,
	}
}

// GetProducts возвращает все блюда меню.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("list products error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]productPayload, 0, len(products))
	for i := range products {
		resp = append(resp, newProductPayload(&products[i]))
	}

	respondJSON(w, http.StatusOK, resp)
}

// CreateProduct создаёт блюдо.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.CreateProduct(r.Context(), req.toModel(""))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPayload):
			respondError(w, http.StatusBadRequest, "name, category and non-negative price required")
		case errors.Is(err, repository.ErrCategoryNotFound):
			respondError(w, http.StatusNotFound, "category not found")
		default:
			h.logger.Error("create product error", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, newProductPayload(p))
}

// UpdateProduct обновляет блюдо.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req productPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.service.UpdateProduct(r.Context(), req.toModel(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPayload):
			respondError(w, http.StatusBadRequest, "name, category and non-negative price required")
		case errors.Is(err, repository.ErrProductNotFound):
			respondError(w, http.StatusNotFound, "product not found")
		default:
			h.logger.Error("update product error", zap.Error(err), zap.String("product", id))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteProduct удаляет блюдо либо деактивирует его, если блюдо
// упоминается в существующих заказах. Ответ сообщает, что именно произошло.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.service.DeleteProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("delete product error", zap.Error(err), zap.String("product", id))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{
		"deleted":     deleted,
		"deactivated": !deleted,
	})
}
