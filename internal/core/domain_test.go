package core

import (
	"testing"
	"time"
)

func TestCategoryTypeMatches(t *testing.T) {
	cases := []struct {
		typ  CategoryType
		kind TransactionKind
		want bool
	}{
		{CategoryExpense, KindExpense, true},
		{CategoryEarning, KindEarning, true},
		{CategoryExpense, KindEarning, false},
		{CategoryEarning, KindExpense, false},
		{"Expense", KindExpense, true}, // case-insensitive
		{"EARNING", KindEarning, true},
	}
	for i, tc := range cases {
		if got := tc.typ.Matches(tc.kind); got != tc.want {
			t.Fatalf("case %d: Matches(%q, %q) = %v, want %v", i, tc.typ, tc.kind, got, tc.want)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Groceries", Type: CategoryExpense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{Name: "", Type: CategoryExpense},
		{Name: "  ", Type: CategoryEarning},
		{Name: "Groceries", Type: "savings"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:       NewDate(2024, 1, 5),
		Amount:     Money{Cents: 4250},
		CategoryID: 1,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Amount: Money{Cents: 1}, CategoryID: 1}, // zero date
		{Date: NewDate(2024, 1, 5), Amount: Money{Cents: 0}, CategoryID: 1},
		{Date: NewDate(2024, 1, 5), Amount: Money{Cents: 1}, CategoryID: 0},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthParseAndBounds(t *testing.T) {
	m, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	if m.Year != 2024 || m.Month != time.February {
		t.Fatalf("unexpected month: %+v", m)
	}
	if got := m.String(); got != "2024-02" {
		t.Fatalf("String() = %q", got)
	}
	if got := m.First().String(); got != "2024-02-01" {
		t.Fatalf("First() = %q", got)
	}
	// 2024 is a leap year
	if got := m.Last().String(); got != "2024-02-29" {
		t.Fatalf("Last() = %q", got)
	}

	if _, err := ParseMonth("2024-13"); err == nil {
		t.Fatal("expected error for month 13")
	}
}

func TestBudgetStatus(t *testing.T) {
	s := BudgetStatus{Allocated: Money{Cents: 10000}, Spent: Money{Cents: 12500}}
	if !s.Overspent() {
		t.Fatal("expected overspent")
	}
	if got := s.Remaining().Cents; got != -2500 {
		t.Fatalf("Remaining() = %d, want -2500", got)
	}
}
