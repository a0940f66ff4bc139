package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/validation"
)

// CreateCategory создаёт раздел меню.
func (s *Service) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	if c.Name == "" {
		return nil, ErrInvalidPayload
	}
	return s.repo.CreateCategory(ctx, c)
}

// ListCategories возвращает разделы меню.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}

// UpdateCategory обновляет раздел меню.
func (s *Service) UpdateCategory(ctx context.Context, c *model.Category) error {
	if c.Name == "" {
		return ErrInvalidPayload
	}
	return s.repo.UpdateCategory(ctx, c)
}

// DeleteCategory удаляет раздел меню.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// CreateProduct создаёт блюдо.
func (s *Service) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	if p.Name == "" || p.CategoryID == "" || p.PricePaise < 0 {
		return nil, ErrInvalidPayload
	}
	return s.repo.CreateProduct(ctx, p)
}

// ListProducts возвращает все блюда.
func (s *Service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.ListProducts(ctx)
}

// UpdateProduct обновляет блюдо.
func (s *Service) UpdateProduct(ctx context.Context, p *model.Product) error {
	if p.Name == "" || p.CategoryID == "" || p.PricePaise < 0 {
		return ErrInvalidPayload
	}
	return s.repo.UpdateProduct(ctx, p)
}

// DeleteProduct удаляет блюдо либо, если на него ссылаются существующие
// заказы, помечает его недоступным. Возвращает true при удалении.
func (s *Service) DeleteProduct(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.DeleteProduct(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		s.logger.Info("product deactivated instead of deleted", zap.String("product", id))
	}
	return deleted, nil
}

// CreateAddress сохраняет адрес доставки пользователя.
func (s *Service) CreateAddress(ctx context.Context, a *model.Address) (*model.Address, error) {
	if a.UserID == "" || a.AddressLine == "" {
		return nil, ErrInvalidPayload
	}
	if a.Pincode != "" && !validation.IsValidPincode(a.Pincode) {
		return nil, ErrInvalidPayload
	}
	return s.repo.CreateAddress(ctx, a)
}

// GetAddressesByUser возвращает адреса пользователя.
func (s *Service) GetAddressesByUser(ctx context.Context, userID string) ([]model.Address, error) {
	return s.repo.GetAddressesByUser(ctx, userID)
}

// SetDefaultAddress делает адрес адресом по умолчанию.
func (s *Service) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	return s.repo.SetDefaultAddress(ctx, userID, addressID)
}

// DeleteAddress удаляет адрес пользователя.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID string) error {
	return s.repo.DeleteAddress(ctx, userID, addressID)
}
