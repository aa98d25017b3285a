// Package worker implements the budget watcher: it reacts to transaction
// events and periodically re-checks the current month, warning when a
// category's spending exceeds its allocation.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

type BudgetWatcher struct {
	storage *storage.SQLiteRepository
}

func NewBudgetWatcher(storage *storage.SQLiteRepository) *BudgetWatcher {
	return &BudgetWatcher{storage: storage}
}

// HandleTransactionEvent re-checks the budget of the category touched by
// the event, for the event's month. Earnings don't count against budgets
// and are ignored.
func (w *BudgetWatcher) HandleTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	if event.Kind != core.KindExpense {
		return nil
	}

	month, err := core.ParseMonth(event.Month)
	if err != nil {
		return fmt.Errorf("parse event month %q: %w", event.Month, err)
	}

	status, err := w.storage.BudgetStatusForCategory(ctx, event.CategoryID, month)
	if errors.Is(err, core.ErrNotFound) {
		// No budget set for this category and month.
		slog.DebugContext(ctx, "No budget for category",
			"category_id", event.CategoryID, "month", event.Month)
		return nil
	}
	if err != nil {
		return fmt.Errorf("budget status: %w", err)
	}

	w.report(ctx, status)
	return nil
}

// CheckMonth evaluates every budget of the month.
func (w *BudgetWatcher) CheckMonth(ctx context.Context, month core.Month) error {
	statuses, err := w.storage.BudgetStatuses(ctx, month)
	if err != nil {
		return fmt.Errorf("budget statuses for %s: %w", month, err)
	}

	overspent := 0
	for _, s := range statuses {
		w.report(ctx, s)
		if s.Overspent() {
			overspent++
		}
	}

	slog.InfoContext(ctx, "Budget check completed",
		"month", month.String(),
		"budgets", len(statuses),
		"overspent", overspent)

	return nil
}

// Run re-checks the current month every interval until the context is
// cancelled. Used alongside event consumption to cover missed events.
func (w *BudgetWatcher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			month := core.MonthOf(time.Now())
			if err := w.CheckMonth(ctx, month); err != nil {
				slog.ErrorContext(ctx, "Periodic budget check failed",
					"month", month.String(), "error", err)
			}
		}
	}
}

func (w *BudgetWatcher) report(ctx context.Context, s core.BudgetStatus) {
	if !s.Overspent() {
		slog.DebugContext(ctx, "Budget within allocation",
			"category", s.CategoryName,
			"month", s.Month.String(),
			"allocated_cents", s.Allocated.Cents,
			"spent_cents", s.Spent.Cents)
		return
	}

	slog.WarnContext(ctx, "Budget exceeded",
		"category", s.CategoryName,
		"month", s.Month.String(),
		"allocated_cents", s.Allocated.Cents,
		"spent_cents", s.Spent.Cents,
		"over_by_cents", -s.Remaining().Cents)
}
