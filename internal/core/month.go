package core

import (
	"fmt"
	"time"
)

// Month identifies a calendar month for budget allocations.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < time.January || m.Month > time.December {
		return fmt.Errorf("invalid month: %w", ErrInvalid)
	}
	return nil
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// First returns the first day of the month.
func (m Month) First() Date {
	return NewDate(m.Year, int(m.Month), 1)
}

// Last returns the last day of the month.
func (m Month) Last() Date {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return Date{Time: first.AddDate(0, 1, -1)}
}
