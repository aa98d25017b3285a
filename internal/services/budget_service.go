package services

import (
	"context"
	"log/slog"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// BudgetService manages monthly allocations and reports spending against
// them.
type BudgetService struct {
	storage *storage.SQLiteRepository
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage}
}

func (s *BudgetService) Create(ctx context.Context, categoryID int64, month core.Month, allocatedCents int64) (core.Budget, error) {
	b, err := s.storage.CreateBudget(ctx, core.Budget{
		Allocated:  core.Money{Cents: allocatedCents},
		Month:      month,
		CategoryID: categoryID,
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to create budget",
			"category_id", categoryID, "month", month.String(), "error", err)
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) GetByID(ctx context.Context, id int64) (core.Budget, error) {
	return s.storage.GetBudget(ctx, id)
}

func (s *BudgetService) GetByCategory(ctx context.Context, categoryID int64) ([]core.Budget, error) {
	return s.storage.ListBudgetsByCategory(ctx, categoryID)
}

func (s *BudgetService) GetByMonth(ctx context.Context, month core.Month) ([]core.Budget, error) {
	return s.storage.ListBudgetsByMonth(ctx, month)
}

func (s *BudgetService) Update(ctx context.Context, id int64, params storage.UpdateBudgetParams) (core.Budget, error) {
	b, err := s.storage.UpdateBudget(ctx, id, params)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update budget", "id", id, "error", err)
		return core.Budget{}, err
	}
	return b, nil
}

func (s *BudgetService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteBudget(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to delete budget", "id", id, "error", err)
		return err
	}
	return nil
}

// Status reports allocated versus spent per budgeted category for the
// month.
func (s *BudgetService) Status(ctx context.Context, month core.Month) ([]core.BudgetStatus, error) {
	return s.storage.BudgetStatuses(ctx, month)
}
