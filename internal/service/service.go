// Package service реализует бизнес-логику сервиса zoyabites.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/zoyabites/zoyabites-system/internal/cloudinary"
	"github.com/zoyabites/zoyabites-system/internal/model"
	"github.com/zoyabites/zoyabites-system/internal/razorpay"
	"github.com/zoyabites/zoyabites-system/internal/repository"
	"github.com/zoyabites/zoyabites-system/internal/validation"
)

// ErrInvalidCredentials возвращается при неверном email или пароле.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrVerificationFailed возвращается при несовпадении подписи платежа.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrInvalidAccessCode возвращается при неверном или истёкшем коде доступа.
	ErrInvalidAccessCode = errors.New("invalid or expired code")
	// ErrInvalidPayload возвращается при структурно некорректных входных данных.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, email string, passwordHash []byte, name, phone string, roles []string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserProfile(ctx context.Context, id, name, phone string) error
	AddUserRole(ctx context.Context, id, role string) error
	RemoveUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, userID string, items []model.LineItem, totalPaise int64, deliveryAddress, notes string) (*model.Order, error)
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	SetOrderStatus(ctx context.Context, id string, status model.OrderStatus, force bool) (model.OrderStatus, error)
	SetRazorpayOrderID(ctx context.Context, id, razorpayOrderID string) error
	MarkOrderPaid(ctx context.Context, id, razorpayPaymentID string) (bool, error)
	DeleteOrder(ctx context.Context, id string) error
	GetStalePendingOrders(ctx context.Context, before time.Time, limit int) ([]model.Order, error)
	CancelPendingOrder(ctx context.Context, id string) (bool, error)

	CreateAddress(ctx context.Context, a *model.Address) (*model.Address, error)
	GetAddressesByUser(ctx context.Context, userID string) ([]model.Address, error)
	SetDefaultAddress(ctx context.Context, userID, addressID string) error
	DeleteAddress(ctx context.Context, userID, addressID string) error

	CreateAccessCode(ctx context.Context, label, code string, expiresAt time.Time) (*model.AccessCode, error)
	ListAccessCodes(ctx context.Context) ([]model.AccessCode, error)
	FindUsableAccessCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error)
	SetAccessCodeActive(ctx context.Context, id string, active bool) error
	DeleteAccessCode(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// Gateway описывает контракт платёжного шлюза, используемый сервисом.
type Gateway interface {
	Configured() bool
	KeyID() string
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*razorpay.GatewayOrder, error)
	GetOrder(ctx context.Context, gatewayOrderID string) (*razorpay.GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}

// ImageStore описывает контракт хостинга изображений.
type ImageStore interface {
	Configured() bool
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// Service содержит бизнес-логику сервиса zoyabites.
type Service struct {
	repo       Repository
	gateway    Gateway
	images     ImageStore
	logger     *zap.Logger
	masterCode string
	pendingTTL time.Duration
	now        func() time.Time
}

// NewService создаёт новый сервис с указанными зависимостями.
func NewService(repo Repository, gateway Gateway, images ImageStore, logger *zap.Logger, masterCode string, pendingTTL time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		gateway:    gateway,
		images:     images,
		logger:     logger,
		masterCode: masterCode,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUser регистрирует нового пользователя с bcrypt-хэшем пароля.
func (s *Service) RegisterUser(ctx context.Context, email, password, name, phone string) (*model.User, error) {
	if !validation.IsValidEmail(email) || password == "" {
		return nil, ErrInvalidPayload
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.CreateUser(ctx, email, hash, name, phone, nil)
	if err != nil {
		return nil, err
	}

	return s.repo.GetUserByID(ctx, id)
}

// AuthenticateUser проверяет email и пароль и возвращает пользователя.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Service) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfile обновляет имя и телефон пользователя.
func (s *Service) UpdateProfile(ctx context.Context, id, name, phone string) error {
	return s.repo.UpdateUserProfile(ctx, id, name, phone)
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// AddUserRole назначает пользователю роль.
func (s *Service) AddUserRole(ctx context.Context, id, role string) error {
	return s.repo.AddUserRole(ctx, id, role)
}

// RemoveUserRole снимает с пользователя роль.
func (s *Service) RemoveUserRole(ctx context.Context, id, role string) error {
	return s.repo.RemoveUserRole(ctx, id, role)
}

// DeleteUser удаляет пользователя.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// UploadImage загружает изображение на хостинг и возвращает публичный URL.
func (s *Service) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if s.images == nil || !s.images.Configured() {
		return "", cloudinary.ErrNotConfigured
	}
	return s.images.Upload(ctx, filename, data)
}
