// Package services wires the storage layer, the category cache and the
// event bus into the operations the API and worker binaries consume.
package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

const (
	categoryCacheSize = 256
	categoryCacheTTL  = 5 * time.Minute
)

// CategoryService manages categories with a read-through cache on id
// lookups. Type checks on every transaction write make category reads hot.
type CategoryService struct {
	storage *storage.SQLiteRepository
	byID    *cache.LRUCache[core.Category]
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{
		storage: storage,
		byID:    cache.NewLRUCache[core.Category](categoryCacheSize, categoryCacheTTL),
	}
}

func (s *CategoryService) Create(ctx context.Context, name string, typ core.CategoryType) (core.Category, error) {
	c, err := s.storage.CreateCategory(ctx, name, typ)
	if err != nil {
		slog.WarnContext(ctx, "Failed to create category",
			"name", name, "type", typ, "error", err)
		return core.Category{}, err
	}
	s.byID.Set(cacheKey(c.ID), c)
	return c, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (core.Category, error) {
	if c, ok := s.byID.Get(cacheKey(id)); ok {
		return c, nil
	}
	c, err := s.storage.GetCategoryByID(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	s.byID.Set(cacheKey(id), c)
	return c, nil
}

func (s *CategoryService) GetByName(ctx context.Context, name string) (core.Category, error) {
	return s.storage.GetCategoryByName(ctx, name)
}

func (s *CategoryService) GetAll(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *CategoryService) GetByType(ctx context.Context, typ core.CategoryType) ([]core.Category, error) {
	return s.storage.ListCategoriesByType(ctx, typ)
}

func (s *CategoryService) Update(ctx context.Context, id int64, params storage.UpdateCategoryParams) (core.Category, error) {
	c, err := s.storage.UpdateCategory(ctx, id, params)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update category", "id", id, "error", err)
		return core.Category{}, err
	}
	s.byID.Set(cacheKey(id), c)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to delete category", "id", id, "error", err)
		return err
	}
	s.byID.Delete(cacheKey(id))
	return nil
}

func cacheKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
