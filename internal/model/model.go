// Package model содержит доменные сущности сервиса zoyabites.
package model

import "time"

// User представляет зарегистрированного пользователя магазина.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Phone        string
	Roles        []string
	CreatedAt    time.Time
}

// HasRole сообщает, содержит ли пользователь указанную роль.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// OrderStatus описывает статус жизненного цикла заказа.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Valid сообщает, является ли значение одним из известных статусов заказа.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, является ли статус конечным.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// orderTransitions задаёт допустимые переходы статусов заказа.
// Отмена возможна из любого неконечного статуса.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:      {OrderStatusOutForDelivery, OrderStatusCancelled},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionTo сообщает, допустим ли обычный (без override) переход в статус next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentStatus описывает статус оплаты заказа.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// LineItem описывает одну позицию заказа. Название и цена фиксируются
// на момент оформления и не меняются при изменении каталога.
type LineItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PricePaise int64  `json:"price_paise"`
}

// Order описывает заказ пользователя и данные платёжного шлюза.
type Order struct {
	ID                string
	UserID            string
	Items             []LineItem
	TotalAmountPaise  int64
	Status            OrderStatus
	PaymentStatus     PaymentStatus
	RazorpayOrderID   string
	RazorpayPaymentID string
	DeliveryAddress   string
	Notes             string
	CreatedAt         time.Time
}

// Address описывает сохранённый адрес доставки пользователя.
type Address struct {
	ID          string
	UserID      string
	Label       string
	AddressLine string
	City        string
	State       string
	Pincode     string
	IsDefault   bool
	CreatedAt   time.Time
}

// AccessCode описывает временный код доступа к панели оператора.
type AccessCode struct {
	ID        string
	Label     string
	Code      string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
}

// Usable сообщает, даёт ли код доступ в указанный момент времени.
func (c *AccessCode) Usable(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiresAt)
}

// Category описывает раздел меню.
type Category struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	SortOrder   int
	CreatedAt   time.Time
}

// Product описывает блюдо в меню.
type Product struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	PricePaise  int64
	ImageURL    string
	IsVeg       bool
	IsAvailable bool
	SortOrder   int
	CreatedAt   time.Time
}
