package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

// CreateAddress сохраняет адрес пользователя. Первый адрес автоматически
// становится адресом по умолчанию; явный запрос default снимает флаг с прежнего
// адреса в той же транзакции.
func (r *PostgresRepository) CreateAddress(ctx context.Context, a *model.Address) (*model.Address, error) {
	a.ID = uuid.NewString()

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var count int
		err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, a.UserID).Scan(&count)
		if err != nil {
			return fmt.Errorf("count addresses: %w", err)
		}

		if count == 0 {
			a.IsDefault = true
		}

		if a.IsDefault {
			if _, err := tx.Exec(ctx,
				`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, a.UserID,
			); err != nil {
				return fmt.Errorf("unset default: %w", err)
			}
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO addresses (id, user_id, label, address_line, city, state, pincode, is_default)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING created_at`,
			a.ID, a.UserID, a.Label, a.AddressLine, a.City, a.State, a.Pincode, a.IsDefault,
		).Scan(&a.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				// Гонка двух первых адресов: проигравший упёрся в частичный
				// индекс, повтор транзакции пройдёт поверх адреса победителя.
				return retry.RetryableError(fmt.Errorf("insert address: %w", err))
			}
			return fmt.Errorf("insert address: %w", err)
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// GetAddressesByUser возвращает адреса пользователя, default первым.
func (r *PostgresRepository) GetAddressesByUser(ctx context.Context, userID string) ([]model.Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, label, address_line, city, state, pincode, is_default, created_at
		 FROM addresses
		 WHERE user_id = $1
		 ORDER BY is_default DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select addresses: %w", err)
	}
	defer rows.Close()

	var res []model.Address
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.AddressLine, &a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// SetDefaultAddress делает адрес пользователя адресом по умолчанию. Снятие
// старого флага и установка нового выполняются одной транзакцией.
func (r *PostgresRepository) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var dummy int
		err = tx.QueryRow(ctx,
			`SELECT 1 FROM addresses WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			addressID, userID,
		).Scan(&dummy)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("lock address: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID,
		); err != nil {
			return fmt.Errorf("unset default: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = TRUE WHERE id = $1`, addressID,
		); err != nil {
			return fmt.Errorf("set default: %w", err)
		}

		return tx.Commit(ctx)
	})
}

// DeleteAddress удаляет адрес пользователя.
func (r *PostgresRepository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}
