package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/razorpay"
)

// CheckoutSession содержит данные платёжной сессии, безопасные для клиента.
type CheckoutSession struct {
	RazorpayOrderID string
	RazorpayKeyID   string
	AmountPaise     int64
}

// InitiateCheckout открывает платёжную сессию шлюза для существующего заказа.
// Сумма приходит в рупиях и переводится в пайсы на границе со шлюзом.
// Ссылка шлюза сохраняется на заказ синхронно: если запись не удалась,
// весь вызов завершается ошибкой, иначе колбэк нельзя будет сопоставить
// с заказом.
func (s *Service) InitiateCheckout(ctx context.Context, orderID string, amountRupees float64) (*CheckoutSession, error) {
	if orderID == "" || amountRupees <= 0 {
		return nil, ErrInvalidPayload
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return nil, razorpay.ErrNotConfigured
	}

	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		return nil, err
	}

	amountPaise := razorpay.ToMinorUnits(amountRupees)

	gwOrder, err := s.gateway.CreateOrder(ctx, amountPaise, orderID)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	if err := s.repo.SetRazorpayOrderID(ctx, orderID, gwOrder.ID); err != nil {
		return nil, fmt.Errorf("persist gateway reference: %w", err)
	}

	return &CheckoutSession{
		RazorpayOrderID: gwOrder.ID,
		RazorpayKeyID:   s.gateway.KeyID(),
		AmountPaise:     amountPaise,
	}, nil
}

// VerifyPayment проверяет подпись колбэка шлюза и фиксирует оплату заказа.
// Подпись должна сойтись, а razorpay_order_id из колбэка обязан совпасть со
// ссылкой, сохранённой на заказ при создании сессии: чужая действительная
// подпись не оплачивает другой заказ. Несовпадение не меняет заказ и
// логируется как событие безопасности. Повторная проверка уже оплаченного
// заказа идемпотентна: состояние перезаписывается теми же терминальными
// значениями без побочных эффектов.
func (s *Service) VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature, orderID string) error {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" || orderID == "" {
		return ErrInvalidPayload
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return razorpay.ErrNotConfigured
	}

	if !s.gateway.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		s.logger.Warn("payment signature mismatch",
			zap.String("order", orderID),
			zap.String("gateway_order", gatewayOrderID),
			zap.String("gateway_payment", gatewayPaymentID),
		)
		return ErrVerificationFailed
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.RazorpayOrderID != gatewayOrderID {
		s.logger.Warn("payment gateway order mismatch",
			zap.String("order", orderID),
			zap.String("stored_gateway_order", order.RazorpayOrderID),
			zap.String("gateway_order", gatewayOrderID),
		)
		return ErrVerificationFailed
	}

	alreadyPaid, err := s.repo.MarkOrderPaid(ctx, orderID, gatewayPaymentID)
	if err != nil {
		return err
	}

	if !alreadyPaid {
		s.logger.Info("order paid",
			zap.String("order", orderID),
			zap.String("gateway_payment", gatewayPaymentID),
		)
	}

	return nil
}
