package validation

import (
	"testing"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.c", true},
		{"user+tag@example.com", true},
		{"", false},
		{"no-at-sign", false},
		{"@example.com", false},
		{"user@", false},
		{"user @example.com", false},
	}

	for _, tt := range tests {
		if got := IsValidEmail(tt.email); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestIsValidPincode(t *testing.T) {
	tests := []struct {
		pincode string
		want    bool
	}{
		{"560001", true},
		{"110001", true},
		{"056001", false},
		{"56001", false},
		{"5600011", false},
		{"56000a", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidPincode(tt.pincode); got != tt.want {
			t.Errorf("IsValidPincode(%q) = %v, want %v", tt.pincode, got, tt.want)
		}
	}
}

func TestValidateLineItems(t *testing.T) {
	valid := model.LineItem{ProductID: "p1", Name: "Biryani", Quantity: 1, PricePaise: 22000}

	tests := []struct {
		name  string
		items []model.LineItem
		want  bool
	}{
		{"single item", []model.LineItem{valid}, true},
		{"free item", []model.LineItem{{ProductID: "p2", Name: "Raita", Quantity: 1, PricePaise: 0}}, true},
		{"empty", nil, false},
		{"missing product id", []model.LineItem{{Name: "Biryani", Quantity: 1, PricePaise: 100}}, false},
		{"missing name", []model.LineItem{{ProductID: "p1", Quantity: 1, PricePaise: 100}}, false},
		{"zero quantity", []model.LineItem{{ProductID: "p1", Name: "Biryani", Quantity: 0, PricePaise: 100}}, false},
		{"negative price", []model.LineItem{{ProductID: "p1", Name: "Biryani", Quantity: 1, PricePaise: -1}}, false},
		{"one bad item spoils the batch", []model.LineItem{valid, {ProductID: "p2", Name: "", Quantity: 1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateLineItems(tt.items); got != tt.want {
				t.Errorf("ValidateLineItems = %v, want %v", got, tt.want)
			}
		})
	}
}
