package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/middleware"
	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/razorpay"
	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

type lineItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type createOrderRequest struct {
	Items           []lineItemPayload `json:"items"`
	TotalAmount     float64           `json:"total_amount"`
	DeliveryAddress string            `json:"delivery_address"`
	Notes           string            `json:"notes"`
}

type orderResponse struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Items             []lineItemPayload `json:"items"`
	TotalAmount       float64           `json:"total_amount"`
	Status            string            `json:"status"`
	PaymentStatus     string            `json:"payment_status"`
	RazorpayOrderID   string            `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string            `json:"razorpay_payment_id,omitempty"`
	DeliveryAddress   string            `json:"delivery_address,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	CreatedAt         string            `json:"created_at"`
}

func newOrderResponse(o *model.Order) orderResponse {
	items := make([]lineItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemPayload{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     paiseToRupees(it.PricePaise),
		})
	}

	return orderResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		Items:             items,
		TotalAmount:       paiseToRupees(o.TotalAmountPaise),
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		RazorpayOrderID:   o.RazorpayOrderID,
		RazorpayPaymentID: o.RazorpayPaymentID,
		DeliveryAddress:   o.DeliveryAddress,
		Notes:             o.Notes,
		CreatedAt:         formatTime(o.CreatedAt),
	}
}

// CreateOrder оформляет новый заказ текущего пользователя.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]model.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, model.LineItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			PricePaise: razorpay.ToMinorUnits(it.Price),
		})
	}

	order, err := h.service.CreateOrder(r.Context(), userID, items,
		razorpay.ToMinorUnits(req.TotalAmount), req.DeliveryAddress, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayload) {
			respondError(w, http.StatusBadRequest, "invalid order payload")
			return
		}
		h.logger.Error("create order error", zap.Error(err), zap.String("userID", userID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]orderResponse{"order": newOrderResponse(order)})
}

// GetOrders возвращает заказы текущего пользователя.
func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.service.GetOrdersByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get orders error", zap.Error(err), zap.String("userID", userID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}

	respondJSON(w, http.StatusOK, map[string][]orderResponse{"orders": resp})
}

// GetAllOrders возвращает все заказы для панели оператора.
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		h.logger.Error("get all orders error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, newOrderResponse(&orders[i]))
	}

	respondJSON(w, http.StatusOK, map[string][]orderResponse{"orders": resp})
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
	Force  bool   `json:"force"`
}

// UpdateOrderStatus переводит заказ в новый статус по запросу оператора.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req updateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.service.SetOrderStatus(r.Context(), orderID, model.OrderStatus(req.Status), req.Force)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPayload):
			respondError(w, http.StatusBadRequest, "unknown status")
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, repository.ErrInvalidStatusTransition):
			respondError(w, http.StatusConflict, "status transition not allowed")
		default:
			h.logger.Error("update order status error", zap.Error(err), zap.String("order", orderID))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeleteOrder удаляет заказ по запросу оператора.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	if err := h.service.DeleteOrder(r.Context(), orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("delete order error", zap.Error(err), zap.String("order", orderID))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
