package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cashflow/internal/core"
)

// UpdateCategoryParams carries the optional fields of a category update.
// Nil fields are left unchanged.
type UpdateCategoryParams struct {
	Name *string
	Type *core.CategoryType
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string, typ core.CategoryType) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name), Type: normalizeType(typ)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO category (name, type) VALUES (?, ?)`,
		c.Name, string(c.Type),
	)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", c.Name, translateErr(err))
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", c.Name, err)
	}

	slog.InfoContext(ctx, "Category created",
		"id", c.ID,
		"name", c.Name,
		"type", c.Type)

	return c, nil
}

func (r *SQLiteRepository) GetCategoryByID(ctx context.Context, id int64) (core.Category, error) {
	return getCategory(ctx, r.db, id)
}

func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, name string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type FROM category WHERE name = ?`, name,
	).Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %q: %w", name, translateErr(err))
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.listCategories(ctx, `SELECT id, name, type FROM category ORDER BY name`)
}

func (r *SQLiteRepository) ListCategoriesByType(ctx context.Context, typ core.CategoryType) ([]core.Category, error) {
	return r.listCategories(ctx,
		`SELECT id, name, type FROM category WHERE type = ? ORDER BY name`,
		string(normalizeType(typ)))
}

func (r *SQLiteRepository) listCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", translateErr(err))
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCategory applies a partial update. The row is untouched when the
// new name collides or the id does not exist.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, params UpdateCategoryParams) (core.Category, error) {
	var updated core.Category
	err := r.withTx(ctx, func(tx dbtx) error {
		c, err := getCategory(ctx, tx, id)
		if err != nil {
			return err
		}

		if params.Name != nil {
			c.Name = strings.TrimSpace(*params.Name)
		}
		if params.Type != nil {
			c.Type = normalizeType(*params.Type)
		}
		if err := c.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE category SET name = ?, type = ? WHERE id = ?`,
			c.Name, string(c.Type), c.ID,
		); err != nil {
			return translateErr(err)
		}

		updated = c
		return nil
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Category updated",
		"id", updated.ID,
		"name", updated.Name,
		"type", updated.Type)

	return updated, nil
}

// DeleteCategory removes a category. Deletion is restricted, not
// cascading: a category still referenced by expenses, earnings or budgets
// fails with core.ErrInUse and the referencing rows are untouched.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM category WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, translateErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete category %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

// getCategory works against both the pool and an open transaction so type
// checks can share the transaction of the write they guard.
func getCategory(ctx context.Context, q dbtx, id int64) (core.Category, error) {
	var c core.Category
	err := q.QueryRowContext(ctx,
		`SELECT id, name, type FROM category WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return core.Category{}, translateErr(err)
	}
	return c, nil
}

func normalizeType(t core.CategoryType) core.CategoryType {
	return core.CategoryType(strings.ToLower(string(t)))
}
