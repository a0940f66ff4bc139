package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

// ErrInvalidStatusTransition возвращается при недопустимом переходе статуса без override.
var ErrInvalidStatusTransition = errors.New("invalid status transition")

const orderColumns = `id, user_id, items, total_amount, status, payment_status,
	 razorpay_order_id, razorpay_payment_id, delivery_address, notes, created_at`

// CreateOrder сохраняет новый заказ со статусами pending/pending.
func (r *PostgresRepository) CreateOrder(ctx context.Context, userID string, items []model.LineItem, totalPaise int64, deliveryAddress, notes string) (*model.Order, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	order := &model.Order{
		ID:               uuid.NewString(),
		UserID:           userID,
		Items:            items,
		TotalAmountPaise: totalPaise,
		Status:           model.OrderStatusPending,
		PaymentStatus:    model.PaymentStatusPending,
		DeliveryAddress:  deliveryAddress,
		Notes:            notes,
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, items, total_amount, status, payment_status, delivery_address, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		order.ID, userID, itemsJSON, totalPaise,
		string(order.Status), string(order.PaymentStatus), deliveryAddress, notes,
	).Scan(&order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return order, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o         model.Order
		itemsJSON []byte
		status    string
		payStatus string
	)
	err := row.Scan(&o.ID, &o.UserID, &itemsJSON, &o.TotalAmountPaise, &status, &payStatus,
		&o.RazorpayOrderID, &o.RazorpayPaymentID, &o.DeliveryAddress, &o.Notes, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(payStatus)

	return &o, nil
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *PostgresRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

// GetAllOrders возвращает все заказы, новые первыми.
func (r *PostgresRepository) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`,
	)
}

// SetOrderStatus переводит заказ в новый статус. Без force допускаются только
// переходы из таблицы модели, использует блокировку строки для атомарности
// проверки и записи. Возвращает предыдущий статус.
func (r *PostgresRepository) SetOrderStatus(ctx context.Context, id string, status model.OrderStatus, force bool) (model.OrderStatus, error) {
	var prev model.OrderStatus

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var current string
		err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		prev = model.OrderStatus(current)
		if !force && !prev.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, prev, status)
		}

		if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status)); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		return tx.Commit(ctx)
	})

	return prev, err
}

// SetRazorpayOrderID сохраняет ссылку платёжного шлюза на заказ. Запись
// синхронная: без неё колбэк шлюза нельзя надёжно связать с заказом.
func (r *PostgresRepository) SetRazorpayOrderID(ctx context.Context, id, razorpayOrderID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET razorpay_order_id = $2 WHERE id = $1`,
		id, razorpayOrderID,
	)
	if err != nil {
		return fmt.Errorf("set razorpay order id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkOrderPaid помечает заказ оплаченным и подтверждённым. Единственный метод,
// устанавливающий payment_status = paid; вызывается только после успешной
// проверки подписи. Возвращает признак того, что заказ уже был оплачен.
func (r *PostgresRepository) MarkOrderPaid(ctx context.Context, id, razorpayPaymentID string) (bool, error) {
	var alreadyPaid bool

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var payStatus string
		err = tx.QueryRow(ctx, `SELECT payment_status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&payStatus)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		alreadyPaid = model.PaymentStatus(payStatus) == model.PaymentStatusPaid

		_, err = tx.Exec(ctx,
			`UPDATE orders SET payment_status = $2, razorpay_payment_id = $3, status = $4 WHERE id = $1`,
			id, string(model.PaymentStatusPaid), razorpayPaymentID, string(model.OrderStatusConfirmed),
		)
		if err != nil {
			return fmt.Errorf("mark paid: %w", err)
		}

		return tx.Commit(ctx)
	})

	return alreadyPaid, err
}

// DeleteOrder удаляет заказ.
func (r *PostgresRepository) DeleteOrder(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// GetStalePendingOrders возвращает неоплаченные pending-заказы старше указанного момента.
func (r *PostgresRepository) GetStalePendingOrders(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE status = $1 AND payment_status = $2 AND created_at < $3
		 ORDER BY created_at
		 LIMIT $4`,
		string(model.OrderStatusPending), string(model.PaymentStatusPending), before, limit,
	)
}

// CancelPendingOrder отменяет заказ, только если он всё ещё pending и не оплачен.
// Возвращает false, если заказ уже успел смениться (например, оплата прошла).
func (r *PostgresRepository) CancelPendingOrder(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2
		 WHERE id = $1 AND status = $3 AND payment_status = $4`,
		id, string(model.OrderStatusCancelled),
		string(model.OrderStatusPending), string(model.PaymentStatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("cancel pending order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
