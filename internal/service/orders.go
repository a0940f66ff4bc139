package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/validation"
)

// CreateOrder оформляет новый заказ. Названия и цены позиций фиксируются
// в заказе и дальше живут независимо от каталога.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []model.LineItem, totalPaise int64, deliveryAddress, notes string) (*model.Order, error) {
	if userID == "" || totalPaise <= 0 || !validation.ValidateLineItems(items) {
		return nil, ErrInvalidPayload
	}
	return s.repo.CreateOrder(ctx, userID, items, totalPaise, deliveryAddress, notes)
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (s *Service) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// GetAllOrders возвращает все заказы для панели оператора.
func (s *Service) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetAllOrders(ctx)
}

// SetOrderStatus переводит заказ в новый статус. Обычный вызов подчиняется
// таблице переходов; force позволяет оператору исправить ошибку, и каждый
// такой переход попадает в журнал.
func (s *Service) SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, force bool) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidPayload, status)
	}

	prev, err := s.repo.SetOrderStatus(ctx, orderID, status, force)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("order", orderID),
		zap.String("from", string(prev)),
		zap.String("to", string(status)),
		zap.Bool("override", force),
	}

	if force && !prev.CanTransitionTo(status) {
		// Откат статуса назад остаётся возможным, но всегда заметен в журнале.
		s.logger.Warn("order status overridden backwards", fields...)
	} else {
		s.logger.Info("order status changed", fields...)
	}

	return nil
}

// DeleteOrder удаляет заказ.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.repo.DeleteOrder(ctx, orderID)
}
