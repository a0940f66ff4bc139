// Package validation содержит проверки входных данных API.
package validation

import (
	"strings"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

// IsValidEmail выполняет минимальную структурную проверку email.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\n")
}

// IsValidPincode проверяет индийский почтовый индекс: шесть цифр,
// первая не ноль.
func IsValidPincode(pincode string) bool {
	if len(pincode) != 6 {
		return false
	}
	for i, c := range pincode {
		if c < '0' || c > '9' {
			return false
		}
		if i == 0 && c == '0' {
			return false
		}
	}
	return true
}

// ValidateLineItems проверяет позиции заказа: хотя бы одна позиция,
// количество не меньше единицы, цена неотрицательна.
func ValidateLineItems(items []model.LineItem) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if it.ProductID == "" || it.Name == "" {
			return false
		}
		if it.Quantity < 1 || it.PricePaise < 0 {
			return false
		}
	}
	return true
}
