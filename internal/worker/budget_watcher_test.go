package worker

import (
	"context"
	"path/filepath"
	"testing"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "cashflow.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleTransactionEventNoBudget(t *testing.T) {
	repo := newTestStorage(t)
	w := NewBudgetWatcher(repo)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, "Groceries", core.CategoryExpense)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	// No budget set: the event is handled without error.
	event := amqp.NewTransactionEvent(core.KindExpense, amqp.ActionCreated, 1, cat.ID,
		core.Month{Year: 2024, Month: 1})
	if err := w.HandleTransactionEvent(ctx, event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
}

func TestHandleTransactionEventIgnoresEarnings(t *testing.T) {
	repo := newTestStorage(t)
	w := NewBudgetWatcher(repo)

	event := amqp.NewTransactionEvent(core.KindEarning, amqp.ActionCreated, 1, 999,
		core.Month{Year: 2024, Month: 1})
	if err := w.HandleTransactionEvent(context.Background(), event); err != nil {
		t.Fatalf("earning events should be ignored, got %v", err)
	}
}

func TestHandleTransactionEventWithBudget(t *testing.T) {
	repo := newTestStorage(t)
	w := NewBudgetWatcher(repo)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, "Groceries", core.CategoryExpense)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	month, _ := core.ParseMonth("2024-01")
	if _, err := repo.CreateBudget(ctx, core.Budget{
		Allocated: core.Money{Cents: 5000}, Month: month, CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("create budget: %v", err)
	}
	exp, err := repo.CreateTransaction(ctx, core.KindExpense, core.Transaction{
		Date: core.NewDate(2024, 1, 10), Amount: core.Money{Cents: 6000}, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	event := amqp.NewTransactionEvent(core.KindExpense, amqp.ActionCreated, exp.ID, cat.ID, month)
	if err := w.HandleTransactionEvent(ctx, event); err != nil {
		t.Fatalf("handle event: %v", err)
	}

	if err := w.CheckMonth(ctx, month); err != nil {
		t.Fatalf("check month: %v", err)
	}
}

func TestHandleTransactionEventBadMonth(t *testing.T) {
	repo := newTestStorage(t)
	w := NewBudgetWatcher(repo)

	event := &amqp.TransactionEvent{Kind: core.KindExpense, Month: "bogus"}
	if err := w.HandleTransactionEvent(context.Background(), event); err == nil {
		t.Fatal("expected error for unparseable month")
	}
}
