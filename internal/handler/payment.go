package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/razorpay"
	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

type createPaymentRequest struct {
	Amount  float64 `json:"amount"`
	OrderID string  `json:"order_id"`
}

type createPaymentResponse struct {
	RazorpayOrderID string `json:"razorpay_order_id"`
	RazorpayKeyID   string `json:"razorpay_key_id"`
	Amount          int64  `json:"amount"`
}

// CreateRazorpayOrder открывает платёжную сессию шлюза для существующего заказа.
func (h *Handler) CreateRazorpayOrder(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Amount <= 0 || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "missing amount or order_id")
		return
	}

	session, err := h.service.InitiateCheckout(r.Context(), req.OrderID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, razorpay.ErrNotConfigured):
			respondError(w, http.StatusInternalServerError, "gateway not configured")
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidPayload):
			respondError(w, http.StatusBadRequest, "missing amount or order_id")
		default:
			// Детали ответа шлюза остаются в журнале, клиенту уходит общая ошибка.
			h.logger.Error("create gateway order error", zap.Error(err), zap.String("order", req.OrderID))
			respondError(w, http.StatusBadRequest, "failed to create payment")
		}
		return
	}

	respondJSON(w, http.StatusOK, createPaymentResponse{
		RazorpayOrderID: session.RazorpayOrderID,
		RazorpayKeyID:   session.RazorpayKeyID,
		Amount:          session.AmountPaise,
	})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           string `json:"order_id"`
}

// VerifyRazorpayPayment проверяет подпись платежа и фиксирует оплату заказа.
func (h *Handler) VerifyRazorpayPayment(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "missing parameters")
		return
	}

	err := h.service.VerifyPayment(r.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationFailed):
			respondError(w, http.StatusBadRequest, "payment verification failed")
		case errors.Is(err, razorpay.ErrNotConfigured):
			respondError(w, http.StatusInternalServerError, "gateway not configured")
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(w, http.StatusNotFound, "order not found")
		default:
			h.logger.Error("verify payment error", zap.Error(err), zap.String("order", req.OrderID))
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
