// Package handler содержит HTTP-обработчики API сервиса zoyabites.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zoyabites/zoyabites-system/internal/middleware"
	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, email, password, name, phone string) (*model.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id, name, phone string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	AddUserRole(ctx context.Context, id, role string) error
	RemoveUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, userID string, items []model.LineItem, totalPaise int64, deliveryAddress, notes string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status model.OrderStatus, force bool) error
	DeleteOrder(ctx context.Context, orderID string) error

	InitiateCheckout(ctx context.Context, orderID string, amountRupees float64) (*service.CheckoutSession, error)
	VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature, orderID string) error

	VerifyAccessCode(ctx context.Context, code string) (string, error)
	CreateAccessCode(ctx context.Context, label, code string, validHours int) (*model.AccessCode, error)
	ListAccessCodes(ctx context.Context) ([]model.AccessCode, error)
	ToggleAccessCode(ctx context.Context, id string, active bool) error
	DeleteAccessCode(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) (bool, error)

	CreateAddress(ctx context.Context, a *model.Address) (*model.Address, error)
	GetAddressesByUser(ctx context.Context, userID string) ([]model.Address, error)
	SetDefaultAddress(ctx context.Context, userID, addressID string) error
	DeleteAddress(ctx context.Context, userID, addressID string) error

	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
}

// Handler реализует HTTP-обработчики API сервиса zoyabites.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// paiseToRupees переводит сумму из пайсов в рупии для JSON-ответов.
func paiseToRupees(paise int64) float64 {
	return float64(paise) / 100
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
