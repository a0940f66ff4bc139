package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sweepInterval = 1 * time.Minute

// StartPendingOrderSweep запускает фоновую сверку брошенных платежей:
// неоплаченные pending-заказы старше TTL отменяются, но перед отменой
// у шлюза запрашивается окончательный статус оплаты.
func (s *Service) StartPendingOrderSweep(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepPendingOrders(ctx)
			}
		}
	}()
}

func (s *Service) sweepPendingOrders(ctx context.Context) {
	cutoff := s.now().Add(-s.pendingTTL)

	orders, err := s.repo.GetStalePendingOrders(ctx, cutoff, 100)
	if err != nil {
		s.logger.Error("sweep: list stale orders", zap.Error(err))
		return
	}

	for _, o := range orders {
		// Если сессия шлюза открывалась, последнее слово за шлюзом:
		// пользователь мог оплатить и закрыть окно до колбэка.
		if o.RazorpayOrderID != "" && s.gateway != nil && s.gateway.Configured() {
			gwOrder, err := s.gateway.GetOrder(ctx, o.RazorpayOrderID)
			if err != nil {
				s.logger.Error("sweep: gateway lookup", zap.Error(err), zap.String("order", o.ID))
				continue
			}
			if gwOrder.Paid() {
				if _, err := s.repo.MarkOrderPaid(ctx, o.ID, ""); err != nil {
					s.logger.Error("sweep: mark paid", zap.Error(err), zap.String("order", o.ID))
					continue
				}
				s.logger.Info("sweep: order confirmed from gateway state", zap.String("order", o.ID))
				continue
			}
		}

		cancelled, err := s.repo.CancelPendingOrder(ctx, o.ID)
		if err != nil {
			s.logger.Error("sweep: cancel order", zap.Error(err), zap.String("order", o.ID))
			continue
		}
		if cancelled {
			s.logger.Info("sweep: abandoned order cancelled",
				zap.String("order", o.ID),
				zap.Time("created_at", o.CreatedAt),
			)
		}
	}
}
