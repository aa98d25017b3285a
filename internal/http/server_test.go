package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"cashflow/internal/services"
	"cashflow/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "cashflow.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	srv := NewServer(":0",
		services.NewCategoryService(repo),
		services.NewExpenseService(repo, nil),
		services.NewEarningService(repo, nil),
		services.NewBudgetService(repo),
		repo,
	)
	t.Cleanup(func() { srv.limiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createCategory(t *testing.T, srv *Server, name, typ string) int64 {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/categories",
		map[string]string{"name": name, "type": typ})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category %q: status %d, body %s", name, rec.Code, rec.Body)
	}
	return decode[categoryResponse](t, rec).ID
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t)

	id := createCategory(t, srv, "Groceries", "expense")

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}
	got := decode[categoryResponse](t, rec)
	if got.Name != "Groceries" || got.Type != "expense" {
		t.Fatalf("got %+v", got)
	}

	rec = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/categories/%d", id),
		map[string]string{"name": "Food"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[categoryResponse](t, rec); got.Name != "Food" {
		t.Fatalf("updated name = %q", got.Name)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/categories/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status %d", rec.Code)
	}
}

func TestDeleteCategoryWithTransactionsConflicts(t *testing.T) {
	srv := newTestServer(t)
	catID := createCategory(t, srv, "Groceries", "expense")

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"transaction_date": "2026-03-14",
		"amount":           "10.00",
		"category_id":      catID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/categories/%d", catID), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete referenced category: status %d, want 409", rec.Code)
	}

	// The category is still there
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/categories/%d", catID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get after failed delete: status %d", rec.Code)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	srv := newTestServer(t)
	createCategory(t, srv, "Rent", "expense")

	rec := doJSON(t, srv, http.MethodPost, "/api/categories",
		map[string]string{"name": "Rent", "type": "expense"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create: status %d, body %s", rec.Code, rec.Body)
	}
}

func TestCreateCategoryInvalidType(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/categories",
		map[string]string{"name": "Misc", "type": "savings"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid type: status %d, body %s", rec.Code, rec.Body)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	srv := newTestServer(t)
	catID := createCategory(t, srv, "Groceries", "expense")

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"transaction_date": "2026-03-14",
		"amount":           "42,50",
		"description":      "weekly shop",
		"category_id":      catID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body)
	}
	created := decode[transactionResponse](t, rec)
	if created.AmountCents != 4250 {
		t.Fatalf("amount_cents = %d, want 4250", created.AmountCents)
	}
	if created.Date != "2026-03-14" {
		t.Fatalf("transaction_date = %q", created.Date)
	}

	rec = doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/api/expenses/%d", created.ID),
		map[string]any{"amount": "40.00"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d, body %s", rec.Code, rec.Body)
	}
	updated := decode[transactionResponse](t, rec)
	if updated.AmountCents != 4000 {
		t.Fatalf("amount_cents after update = %d", updated.AmountCents)
	}
	if updated.Description != "weekly shop" {
		t.Fatalf("description lost on partial update: %q", updated.Description)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
}

func TestExpenseRejectsEarningCategory(t *testing.T) {
	srv := newTestServer(t)
	catID := createCategory(t, srv, "Salary", "earning")

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"transaction_date": "2026-03-14",
		"amount":           "10.00",
		"category_id":      catID,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
}

func TestEarningCreate(t *testing.T) {
	srv := newTestServer(t)
	catID := createCategory(t, srv, "Salary", "earning")

	rec := doJSON(t, srv, http.MethodPost, "/api/earnings", map[string]any{
		"transaction_date": "2026-03-01",
		"amount":           "2500.00",
		"category_id":      catID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[transactionResponse](t, rec); got.AmountCents != 250000 {
		t.Fatalf("amount_cents = %d", got.AmountCents)
	}
}

func TestListExpensesByRange(t *testing.T) {
	srv := newTestServer(t)
	catID := createCategory(t, srv, "Groceries", "expense")

	for _, day := range []string{"2026-03-01", "2026-03-05", "2026-03-10", "2026-03-15"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
			"transaction_date": day,
			"amount":           "5.00",
			"category_id":      catID,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: status %d", day, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/expenses?from=2026-03-05&to=2026-03-10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
	if got := decode[[]transactionResponse](t, rec); len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses?from=2026-03-10&to=2026-03-05", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("inverted range: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing query: status %d", rec.Code)
	}
}

func TestBudgetLifecycleAndStatus(t *testing.T) {
	srv := newTestServer(t)
	catID := createCategory(t, srv, "Groceries", "expense")

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"month":       "2026-03",
		"allocated":   "100.00",
		"category_id": catID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body)
	}
	budget := decode[budgetResponse](t, rec)
	if budget.AllocatedCents != 10000 {
		t.Fatalf("allocated_cents = %d", budget.AllocatedCents)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"month":       "2026-03",
		"allocated":   "50.00",
		"category_id": catID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("second budget for month: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"transaction_date": "2026-03-20",
		"amount":           "120.00",
		"category_id":      catID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/budgets/status?month=2026-03", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body %s", rec.Code, rec.Body)
	}
	statuses := decode[[]budgetStatusResponse](t, rec)
	if len(statuses) != 1 {
		t.Fatalf("got %d statuses, want 1", len(statuses))
	}
	st := statuses[0]
	if st.SpentCents != 12000 || !st.Overspent || st.RemainingCents != -2000 {
		t.Fatalf("status = %+v", st)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/budgets/%d", budget.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
}

func TestBudgetUnknownCategory(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", map[string]any{
		"month":       "2026-03",
		"allocated":   "100.00",
		"category_id": 999,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestUnknownBodyFieldRejected(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/categories",
		map[string]string{"name": "X", "type": "expense", "color": "red"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}
