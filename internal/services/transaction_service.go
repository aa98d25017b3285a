package services

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// EventPublisher publishes transaction events to the broker. The concrete
// implementation is *amqp.Client; a nil publisher disables events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, event *amqp.TransactionEvent) error
}

// TransactionService handles either expenses or earnings; the kind decides
// which table it writes and which category type it accepts.
type TransactionService struct {
	kind    core.TransactionKind
	storage *storage.SQLiteRepository
	events  EventPublisher
}

func NewExpenseService(storage *storage.SQLiteRepository, events EventPublisher) *TransactionService {
	return &TransactionService{kind: core.KindExpense, storage: storage, events: events}
}

func NewEarningService(storage *storage.SQLiteRepository, events EventPublisher) *TransactionService {
	return &TransactionService{kind: core.KindEarning, storage: storage, events: events}
}

// Kind returns the transaction kind this service handles.
func (s *TransactionService) Kind() core.TransactionKind {
	return s.kind
}

// Create validates the category reference and persists the transaction. On
// success a created event is published; a broker failure is logged but
// never fails the request.
func (s *TransactionService) Create(ctx context.Context, date core.Date, amountCents int64, categoryID int64, description string) (core.Transaction, error) {
	t, err := s.storage.CreateTransaction(ctx, s.kind, core.Transaction{
		Date:        date,
		Amount:      core.Money{Cents: amountCents},
		Description: description,
		CategoryID:  categoryID,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to create transaction",
			"kind", s.kind, "category_id", categoryID, "error", err)
		return core.Transaction{}, err
	}

	s.publish(ctx, amqp.ActionCreated, t)
	return t, nil
}

func (s *TransactionService) GetByID(ctx context.Context, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, s.kind, id)
}

func (s *TransactionService) GetByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	return s.storage.ListTransactionsByCategory(ctx, s.kind, categoryID)
}

// GetByRange returns the transactions with start <= date <= end.
func (s *TransactionService) GetByRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	if end.Time.Before(start.Time) {
		return nil, fmt.Errorf("range end %s before start %s: %w", end, start, core.ErrInvalid)
	}
	return s.storage.ListTransactionsByRange(ctx, s.kind, start, end)
}

func (s *TransactionService) Update(ctx context.Context, id int64, params storage.UpdateTransactionParams) (core.Transaction, error) {
	t, err := s.storage.UpdateTransaction(ctx, s.kind, id, params)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update transaction",
			"kind", s.kind, "id", id, "error", err)
		return core.Transaction{}, err
	}
	return t, nil
}

// Delete removes the transaction and publishes a deleted event carrying
// the category and month of the removed row.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	// Fetch first: the event needs category and month after the row is gone.
	t, err := s.storage.GetTransaction(ctx, s.kind, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteTransaction(ctx, s.kind, id); err != nil {
		slog.WarnContext(ctx, "Failed to delete transaction",
			"kind", s.kind, "id", id, "error", err)
		return err
	}

	s.publish(ctx, amqp.ActionDeleted, t)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, action string, t core.Transaction) {
	if s.events == nil {
		return
	}
	event := amqp.NewTransactionEvent(s.kind, action, t.ID, t.CategoryID, core.MonthOf(t.Date.Time))
	if err := s.events.PublishTransactionEvent(ctx, event); err != nil {
		// The row is already committed; the periodic budget check covers
		// missed events.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"kind", s.kind, "action", action, "id", t.ID, "error", err)
	}
}
