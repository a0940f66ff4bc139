package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zoyabites/zoyabites-system/internal/model"
)

// CreateCategory сохраняет новый раздел меню.
func (r *PostgresRepository) CreateCategory(ctx context.Context, c *model.Category) (*model.Category, error) {
	c.ID = uuid.NewString()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (id, name, description, image_url, sort_order)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		c.ID, c.Name, c.Description, c.ImageURL, c.SortOrder,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	return c, nil
}

// ListCategories возвращает разделы меню в порядке сортировки.
func (r *PostgresRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, image_url, sort_order, created_at
		 FROM categories
		 ORDER BY sort_order, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var res []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateCategory обновляет раздел меню.
func (r *PostgresRepository) UpdateCategory(ctx context.Context, c *model.Category) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET name = $2, description = $3, image_url = $4, sort_order = $5 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.ImageURL, c.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory удаляет раздел меню вместе с его блюдами.
func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		if _, err := tx.Exec(ctx, `DELETE FROM products WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("delete category products: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrCategoryNotFound
		}

		return tx.Commit(ctx)
	})
	return err
}

// CreateProduct сохраняет новое блюдо.
func (r *PostgresRepository) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	p.ID = uuid.NewString()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (id, category_id, name, description, price, image_url, is_veg, is_available, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		p.ID, p.CategoryID, p.Name, p.Description, p.PricePaise, p.ImageURL, p.IsVeg, p.IsAvailable, p.SortOrder,
	).Scan(&p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}

	return p, nil
}

// ListProducts возвращает все блюда в порядке сортировки.
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category_id, name, description, price, image_url, is_veg, is_available, sort_order, created_at
		 FROM products
		 ORDER BY sort_order, created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.PricePaise, &p.ImageURL, &p.IsVeg, &p.IsAvailable, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateProduct обновляет блюдо.
func (r *PostgresRepository) UpdateProduct(ctx context.Context, p *model.Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products
		 SET category_id = $2, name = $3, description = $4, price = $5,
		     image_url = $6, is_veg = $7, is_available = $8, sort_order = $9
		 WHERE id = $1`,
		p.ID, p.CategoryID, p.Name, p.Description, p.PricePaise, p.ImageURL, p.IsVeg, p.IsAvailable, p.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct удаляет блюдо. Если на блюдо ссылаются позиции существующих
// заказов, вместо удаления оно помечается недоступным, чтобы не потерять
// историю цен. Возвращает true, если блюдо было удалено, false — если
// деактивировано.
func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) (bool, error) {
	var deleted bool

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var referenced bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (
			     SELECT 1 FROM orders
			     WHERE items @> jsonb_build_array(jsonb_build_object('product_id', $1::text))
			 )`,
			id,
		).Scan(&referenced)
		if err != nil {
			return fmt.Errorf("check order references: %w", err)
		}

		if referenced {
			tag, err := tx.Exec(ctx, `UPDATE products SET is_available = FALSE WHERE id = $1`, id)
			if err != nil {
				return fmt.Errorf("deactivate product: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return ErrProductNotFound
			}
			deleted = false
			return tx.Commit(ctx)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrProductNotFound
		}
		deleted = true

		return tx.Commit(ctx)
	})

	return deleted, err
}
