package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

// CreateAccessCode сохраняет новый код доступа.
func (r *PostgresRepository) CreateAccessCode(ctx context.Context, label, code string, expiresAt time.Time) (*model.AccessCode, error) {
	ac := &model.AccessCode{
		ID:        uuid.NewString(),
		Label:     label,
		Code:      code,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO access_codes (id, label, code, expires_at, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING created_at`,
		ac.ID, label, code, expiresAt,
	).Scan(&ac.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert access code: %w", err)
	}

	return ac, nil
}

// ListAccessCodes возвращает все коды доступа, включая истёкшие,
// пока они не удалены явно. Новые первыми.
func (r *PostgresRepository) ListAccessCodes(ctx context.Context) ([]model.AccessCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, label, code, expires_at, is_active, created_at
		 FROM access_codes
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select access codes: %w", err)
	}
	defer rows.Close()

	var res []model.AccessCode
	for rows.Next() {
		var ac model.AccessCode
		if err := rows.Scan(&ac.ID, &ac.Label, &ac.Code, &ac.ExpiresAt, &ac.IsActive, &ac.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan access code: %w", err)
		}
		res = append(res, ac)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// FindUsableAccessCode ищет активный неистёкший код доступа по его значению.
func (r *PostgresRepository) FindUsableAccessCode(ctx context.Context, code string, now time.Time) (*model.AccessCode, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, label, code, expires_at, is_active, created_at
		 FROM access_codes
		 WHERE code = $1 AND is_active AND expires_at > $2`,
		code, now,
	)

	var ac model.AccessCode
	err := row.Scan(&ac.ID, &ac.Label, &ac.Code, &ac.ExpiresAt, &ac.IsActive, &ac.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccessCodeNotFound
		}
		return nil, fmt.Errorf("find access code: %w", err)
	}

	return &ac, nil
}

// SetAccessCodeActive включает или выключает код доступа.
func (r *PostgresRepository) SetAccessCodeActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE access_codes SET is_active = $2 WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("toggle access code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccessCodeNotFound
	}
	return nil
}

// DeleteAccessCode удаляет код доступа.
func (r *PostgresRepository) DeleteAccessCode(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM access_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete access code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccessCodeNotFound
	}
	return nil
}
