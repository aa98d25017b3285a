package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/core"
)

// UpdateBudgetParams carries the optional fields of a budget update. Nil
// fields are left unchanged.
type UpdateBudgetParams struct {
	AllocatedCents *int64
	Month          *core.Month
	CategoryID     *int64
}

// CreateBudget inserts a monthly allocation for a category. At most one
// budget may exist per (category, month); a second insert fails with
// core.ErrDuplicate.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	err := r.withTx(ctx, func(tx dbtx) error {
		if _, err := getCategory(ctx, tx, b.CategoryID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO budget (allocated_cents, month, category_id) VALUES (?, ?, ?)`,
			b.Allocated.Cents, b.Month.String(), b.CategoryID,
		)
		if err != nil {
			return translateErr(err)
		}
		b.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget created",
		"id", b.ID,
		"month", b.Month.String(),
		"allocated_cents", b.Allocated.Cents,
		"category_id", b.CategoryID)

	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := getBudget(ctx, r.db, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgetsByCategory(ctx context.Context, categoryID int64) ([]core.Budget, error) {
	if _, err := getCategory(ctx, r.db, categoryID); err != nil {
		return nil, fmt.Errorf("list budgets for category %d: %w", categoryID, err)
	}
	return r.listBudgets(ctx,
		`SELECT id, allocated_cents, month, category_id FROM budget
		 WHERE category_id = ? ORDER BY month`,
		categoryID)
}

func (r *SQLiteRepository) ListBudgetsByMonth(ctx context.Context, month core.Month) ([]core.Budget, error) {
	return r.listBudgets(ctx,
		`SELECT id, allocated_cents, month, category_id FROM budget
		 WHERE month = ? ORDER BY category_id`,
		month.String())
}

func (r *SQLiteRepository) listBudgets(ctx context.Context, query string, args ...any) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", translateErr(err))
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBudget applies a partial update. Moving the budget to another
// category re-validates that the category exists; the (category, month)
// uniqueness still holds and collisions fail with core.ErrDuplicate.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id int64, params UpdateBudgetParams) (core.Budget, error) {
	var updated core.Budget
	err := r.withTx(ctx, func(tx dbtx) error {
		b, err := getBudget(ctx, tx, id)
		if err != nil {
			return err
		}

		if params.AllocatedCents != nil {
			b.Allocated = core.Money{Cents: *params.AllocatedCents}
		}
		if params.Month != nil {
			b.Month = *params.Month
		}
		if params.CategoryID != nil && *params.CategoryID != b.CategoryID {
			if _, err := getCategory(ctx, tx, *params.CategoryID); err != nil {
				return err
			}
			b.CategoryID = *params.CategoryID
		}
		if err := b.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE budget SET allocated_cents = ?, month = ?, category_id = ? WHERE id = ?`,
			b.Allocated.Cents, b.Month.String(), b.CategoryID, b.ID,
		); err != nil {
			return translateErr(err)
		}

		updated = b
		return nil
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget updated",
		"id", updated.ID,
		"month", updated.Month.String(),
		"allocated_cents", updated.Allocated.Cents,
		"category_id", updated.CategoryID)

	return updated, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, translateErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete budget %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete budget %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id)
	return nil
}

// BudgetStatuses compares each budgeted category's expense total for the
// month against its allocation.
func (r *SQLiteRepository) BudgetStatuses(ctx context.Context, month core.Month) ([]core.BudgetStatus, error) {
	rows, err := r.db.QueryContext(ctx, budgetStatusQuery+` ORDER BY c.name`,
		month.First().String(), month.Last().String(), month.String())
	if err != nil {
		return nil, fmt.Errorf("budget statuses for %s: %w", month, translateErr(err))
	}
	defer rows.Close()

	var out []core.BudgetStatus
	for rows.Next() {
		s := core.BudgetStatus{Month: month}
		if err := rows.Scan(&s.CategoryID, &s.CategoryName, &s.Allocated.Cents, &s.Spent.Cents); err != nil {
			return nil, fmt.Errorf("scan budget status: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// BudgetStatusForCategory returns the status of a single category's budget
// for the month; core.ErrNotFound when no budget is set.
func (r *SQLiteRepository) BudgetStatusForCategory(ctx context.Context, categoryID int64, month core.Month) (core.BudgetStatus, error) {
	s := core.BudgetStatus{Month: month}
	err := r.db.QueryRowContext(ctx, budgetStatusQuery+` AND b.category_id = ?`,
		month.First().String(), month.Last().String(), month.String(), categoryID,
	).Scan(&s.CategoryID, &s.CategoryName, &s.Allocated.Cents, &s.Spent.Cents)
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("budget status for category %d in %s: %w",
			categoryID, month, translateErr(err))
	}
	return s, nil
}

const budgetStatusQuery = `
SELECT b.category_id, c.name, b.allocated_cents,
       COALESCE((SELECT SUM(e.amount_cents) FROM expense e
                 WHERE e.category_id = b.category_id
                   AND e.transaction_date >= ? AND e.transaction_date <= ?), 0)
FROM budget b
JOIN category c ON c.id = b.category_id
WHERE b.month = ?`

func getBudget(ctx context.Context, q dbtx, id int64) (core.Budget, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, allocated_cents, month, category_id FROM budget WHERE id = ?`, id)
	b, err := scanBudget(row.Scan)
	if err != nil {
		return core.Budget{}, translateErr(err)
	}
	return b, nil
}

func scanBudget(scan func(...any) error) (core.Budget, error) {
	var (
		b        core.Budget
		monthStr string
	)
	if err := scan(&b.ID, &b.Allocated.Cents, &monthStr, &b.CategoryID); err != nil {
		return core.Budget{}, err
	}
	m, err := core.ParseMonth(monthStr)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget month %q: %w", monthStr, err)
	}
	b.Month = m
	return b, nil
}
