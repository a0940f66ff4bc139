package model

import (
	"testing"
	"time"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusPreparing, OrderStatusOutForDelivery, true},
		{OrderStatusOutForDelivery, OrderStatusDelivered, true},

		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusOutForDelivery, OrderStatusCancelled, true},

		{OrderStatusPending, OrderStatusPending, true},
		{OrderStatusDelivered, OrderStatusDelivered, true},

		{OrderStatusPending, OrderStatusPreparing, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusDelivered, OrderStatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled,
	} {
		if !s.Valid() {
			t.Errorf("%s must be valid", s)
		}
	}

	for _, s := range []OrderStatus{"", "shipped", "PENDING"} {
		if s.Valid() {
			t.Errorf("%q must be invalid", s)
		}
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusDelivered.Terminal() || !OrderStatusCancelled.Terminal() {
		t.Fatalf("delivered and cancelled are terminal")
	}
	if OrderStatusPending.Terminal() || OrderStatusOutForDelivery.Terminal() {
		t.Fatalf("active statuses are not terminal")
	}
}

func TestAccessCodeUsable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		code AccessCode
		want bool
	}{
		{"active and fresh", AccessCode{IsActive: true, ExpiresAt: now.Add(time.Hour)}, true},
		{"expired an hour ago", AccessCode{IsActive: true, ExpiresAt: now.Add(-time.Hour)}, false},
		{"inactive", AccessCode{IsActive: false, ExpiresAt: now.Add(time.Hour)}, false},
		{"expires exactly now", AccessCode{IsActive: true, ExpiresAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Usable(now); got != tt.want {
				t.Errorf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserHasRole(t *testing.T) {
	u := &User{Roles: []string{"admin"}}
	if !u.HasRole("admin") {
		t.Fatalf("expected admin role")
	}
	if u.HasRole("seller") {
		t.Fatalf("unexpected seller role")
	}

	var empty User
	if empty.HasRole("admin") {
		t.Fatalf("user without roles has none")
	}
}
