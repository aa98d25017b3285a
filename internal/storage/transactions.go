package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/core"
)

// Expense and earning rows are identical in shape; the kind selects the
// table and the category type the row must reference.
func tableFor(kind core.TransactionKind) string {
	if kind == core.KindEarning {
		return "earning"
	}
	return "expense"
}

// UpdateTransactionParams carries the optional fields of a transaction
// update. Nil fields are left unchanged.
type UpdateTransactionParams struct {
	Date        *core.Date
	AmountCents *int64
	Description *string
	CategoryID  *int64
}

// CreateTransaction validates the referenced category inside the insert
// transaction: the category must exist and its type must match the kind.
// Nothing is persisted when validation fails.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, kind core.TransactionKind, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err := r.withTx(ctx, func(tx dbtx) error {
		cat, err := getCategory(ctx, tx, t.CategoryID)
		if err != nil {
			return err
		}
		if !cat.Type.Matches(kind) {
			return fmt.Errorf("category %q is of type %q, expected %q: %w",
				cat.Name, cat.Type, kind.CategoryType(), core.ErrTypeMismatch)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO `+tableFor(kind)+` (transaction_date, amount_cents, description, category_id)
			 VALUES (?, ?, ?, ?)`,
			t.Date.String(), t.Amount.Cents, t.Description, t.CategoryID,
		)
		if err != nil {
			return translateErr(err)
		}
		t.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", kind, err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"kind", kind,
		"id", t.ID,
		"date", t.Date.String(),
		"amount_cents", t.Amount.Cents,
		"category_id", t.CategoryID)

	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, kind core.TransactionKind, id int64) (core.Transaction, error) {
	t, err := getTransaction(ctx, r.db, kind, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return t, nil
}

// ListTransactionsByCategory returns the transactions filed under the
// category. The category must exist; a missing category is an error, an
// empty result is not.
func (r *SQLiteRepository) ListTransactionsByCategory(ctx context.Context, kind core.TransactionKind, categoryID int64) ([]core.Transaction, error) {
	if _, err := getCategory(ctx, r.db, categoryID); err != nil {
		return nil, fmt.Errorf("list %ss for category %d: %w", kind, categoryID, err)
	}
	return r.listTransactions(ctx, kind,
		`SELECT id, transaction_date, amount_cents, description, category_id
		 FROM `+tableFor(kind)+` WHERE category_id = ? ORDER BY transaction_date, id`,
		categoryID)
}

// ListTransactionsByRange returns transactions with start <= date <= end,
// inclusive on both ends.
func (r *SQLiteRepository) ListTransactionsByRange(ctx context.Context, kind core.TransactionKind, start, end core.Date) ([]core.Transaction, error) {
	return r.listTransactions(ctx, kind,
		`SELECT id, transaction_date, amount_cents, description, category_id
		 FROM `+tableFor(kind)+`
		 WHERE transaction_date >= ? AND transaction_date <= ?
		 ORDER BY transaction_date, id`,
		start.String(), end.String())
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, kind core.TransactionKind, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, translateErr(err))
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransaction applies a partial update. When the category changes,
// the new category's type is re-validated against the kind in the same
// transaction; the row is unmodified on any failure.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, kind core.TransactionKind, id int64, params UpdateTransactionParams) (core.Transaction, error) {
	var updated core.Transaction
	err := r.withTx(ctx, func(tx dbtx) error {
		t, err := getTransaction(ctx, tx, kind, id)
		if err != nil {
			return err
		}

		if params.Date != nil {
			t.Date = *params.Date
		}
		if params.AmountCents != nil {
			t.Amount = core.Money{Cents: *params.AmountCents}
		}
		if params.Description != nil {
			t.Description = *params.Description
		}
		if params.CategoryID != nil && *params.CategoryID != t.CategoryID {
			cat, err := getCategory(ctx, tx, *params.CategoryID)
			if err != nil {
				return err
			}
			if !cat.Type.Matches(kind) {
				return fmt.Errorf("category %q is of type %q, expected %q: %w",
					cat.Name, cat.Type, kind.CategoryType(), core.ErrTypeMismatch)
			}
			t.CategoryID = *params.CategoryID
		}
		if err := t.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE `+tableFor(kind)+`
			 SET transaction_date = ?, amount_cents = ?, description = ?, category_id = ?
			 WHERE id = ?`,
			t.Date.String(), t.Amount.Cents, t.Description, t.CategoryID, t.ID,
		); err != nil {
			return translateErr(err)
		}

		updated = t
		return nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %d: %w", kind, id, err)
	}

	slog.InfoContext(ctx, "Transaction updated",
		"kind", kind,
		"id", updated.ID,
		"date", updated.Date.String(),
		"amount_cents", updated.Amount.Cents,
		"category_id", updated.CategoryID)

	return updated, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, kind core.TransactionKind, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+tableFor(kind)+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, translateErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %d: %w", kind, id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Transaction deleted", "kind", kind, "id", id)
	return nil
}

func getTransaction(ctx context.Context, q dbtx, kind core.TransactionKind, id int64) (core.Transaction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, transaction_date, amount_cents, description, category_id
		 FROM `+tableFor(kind)+` WHERE id = ?`, id)
	t, err := scanTransaction(row.Scan)
	if err != nil {
		return core.Transaction{}, translateErr(err)
	}
	return t, nil
}

func scanTransaction(scan func(...any) error) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
	)
	if err := scan(&t.ID, &dateStr, &t.Amount.Cents, &t.Description, &t.CategoryID); err != nil {
		return core.Transaction{}, err
	}
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	t.Date = d
	return t, nil
}
