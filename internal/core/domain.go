package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	CategoryExpense CategoryType = "expense"
	CategoryEarning CategoryType = "earning"
)

const (
	KindExpense TransactionKind = "expense"
	KindEarning TransactionKind = "earning"
)

type (
	// CategoryType classifies a category as holding expenses or earnings.
	CategoryType string

	// TransactionKind names the two transaction tables.
	TransactionKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID   int64
		Name string
		Type CategoryType
	}

	// Transaction is a single expense or earning row. The two tables share
	// the same shape and differ only in which category type they accept.
	Transaction struct {
		ID          int64
		Date        Date
		Amount      Money
		Description string
		CategoryID  int64
	}

	Budget struct {
		ID         int64
		Allocated  Money
		Month      Month
		CategoryID int64
	}

	// BudgetStatus compares a month's spending against the allocated budget
	// for one category.
	BudgetStatus struct {
		CategoryID   int64
		CategoryName string
		Month        Month
		Allocated    Money
		Spent        Money
	}
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrTypeMismatch = errors.New("category type mismatch")
	ErrInUse        = errors.New("still referenced")

	// ErrInvalid is the root of all validation failures; specific causes
	// wrap it so callers can classify with a single errors.Is check.
	ErrInvalid       = errors.New("invalid")
	ErrInvalidAmount = fmt.Errorf("invalid amount: %w", ErrInvalid)
	ErrEmptyName     = fmt.Errorf("empty category name: %w", ErrInvalid)
	ErrInvalidType   = fmt.Errorf("invalid category type: %w", ErrInvalid)
)

// CategoryType returns the category type a transaction kind requires.
func (k TransactionKind) CategoryType() CategoryType {
	if k == KindEarning {
		return CategoryEarning
	}
	return CategoryExpense
}

// Matches reports whether the category type accepts transactions of the
// given kind. The comparison is case-insensitive: "Expense" and "EXPENSE"
// both match KindExpense.
func (t CategoryType) Matches(kind TransactionKind) bool {
	return strings.EqualFold(string(t), string(kind.CategoryType()))
}

func (t CategoryType) Validate() error {
	switch strings.ToLower(string(t)) {
	case string(CategoryExpense), string(CategoryEarning):
		return nil
	default:
		return ErrInvalidType
	}
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("date cannot be zero: %w", ErrInvalid)
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return fmt.Errorf("category name too long (max 100 characters): %w", ErrInvalid)
	}
	return c.Type.Validate()
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	// Description is optional but bounded.
	if len(t.Description) > 200 {
		return fmt.Errorf("description too long (max 200 characters): %w", ErrInvalid)
	}
	if t.CategoryID <= 0 {
		return fmt.Errorf("missing category id: %w", ErrInvalid)
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Allocated.Validate(); err != nil {
		return err
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	if b.CategoryID <= 0 {
		return fmt.Errorf("missing category id: %w", ErrInvalid)
	}
	return nil
}

// Remaining returns the unspent part of the allocation. Negative when the
// category is over budget.
func (s BudgetStatus) Remaining() Money {
	return Money{Cents: s.Allocated.Cents - s.Spent.Cents}
}

// Overspent reports whether spending exceeded the allocation.
func (s BudgetStatus) Overspent() bool {
	return s.Spent.Cents > s.Allocated.Cents
}
