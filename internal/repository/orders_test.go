package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

var orderRowColumns = []string{
	"id", "user_id", "items", "total_amount", "status", "payment_status",
	"razorpay_order_id", "razorpay_payment_id", "delivery_address", "notes", "created_at",
}

func orderRow(id, userID string) []any {
	return []any{
		id, userID,
		[]byte(`[{"product_id":"p1","name":"Biryani","quantity":2,"price_paise":22000}]`),
		int64(44000), "pending", "pending", "", "", "", "", time.Now(),
	}
}

func TestGetOrdersByUser_ScopedToUser(t *testing.T) {
	repo, mock := newMockRepository(t)

	// Запрос обязан фильтровать по user_id: чужие заказы не выбираются.
	mock.ExpectQuery(`FROM orders WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(orderRowColumns).
			AddRow(orderRow("order-2", "user-1")...).
			AddRow(orderRow("order-1", "user-1")...))

	orders, err := repo.GetOrdersByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrdersByUser: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("len = %d, want 2", len(orders))
	}
	for _, o := range orders {
		if o.UserID != "user-1" {
			t.Fatalf("order %s belongs to %s", o.ID, o.UserID)
		}
	}
	if orders[0].Items[0].PricePaise != 22000 {
		t.Fatalf("price = %d, want 22000", orders[0].Items[0].PricePaise)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetOrderStatus_RejectsIllegalTransition(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("delivered"))
	mock.ExpectRollback()

	_, err := repo.SetOrderStatus(context.Background(), "order-1", model.OrderStatusPreparing, false)
	if !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("err = %v, want ErrInvalidStatusTransition", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetOrderStatus_ForceOverridesTable(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("delivered"))
	mock.ExpectExec(`UPDATE orders SET status = \$2 WHERE id = \$1`).
		WithArgs("order-1", "preparing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	prev, err := repo.SetOrderStatus(context.Background(), "order-1", model.OrderStatusPreparing, true)
	if err != nil {
		t.Fatalf("SetOrderStatus: %v", err)
	}
	if prev != model.OrderStatusDelivered {
		t.Fatalf("prev = %s, want delivered", prev)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkOrderPaid_ReportsAlreadyPaid(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT payment_status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"payment_status"}).AddRow("paid"))
	mock.ExpectExec(`UPDATE orders SET payment_status = \$2`).
		WithArgs("order-1", "paid", "pay_xyz", "confirmed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	alreadyPaid, err := repo.MarkOrderPaid(context.Background(), "order-1", "pay_xyz")
	if err != nil {
		t.Fatalf("MarkOrderPaid: %v", err)
	}
	if !alreadyPaid {
		t.Fatalf("alreadyPaid = false, want true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetOrderStatus_OrderNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	_, err := repo.SetOrderStatus(context.Background(), "missing", model.OrderStatusConfirmed, false)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
