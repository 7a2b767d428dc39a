package core

import (
	"fmt"
	"regexp"
	"time"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// MonthsEnding returns n month identifiers (YYYY-MM), oldest first, ending
// at the month containing ref. Month arithmetic rolls month <= 0 back into
// the prior year. Returns nil when n < 1.
func MonthsEnding(ref time.Time, n int) []string {
	if n < 1 {
		return nil
	}
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		year := ref.Year()
		month := int(ref.Month()) - i
		for month <= 0 {
			month += 12
			year--
		}
		out = append(out, fmt.Sprintf("%04d-%02d", year, month))
	}
	return out
}

// FormatMonthKey builds a YYYY-MM identifier from a year and 1-based month.
func FormatMonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ParseMonthKey validates and splits a YYYY-MM month identifier. The format
// is strict: exactly four digits, a dash, two digits, month 01-12.
func ParseMonthKey(key string) (year, month int, err error) {
	if !monthKeyPattern.MatchString(key) {
		return 0, 0, fmt.Errorf("month %q: expected YYYY-MM: %w", key, ErrInvalidDate)
	}
	if _, err := fmt.Sscanf(key, "%04d-%02d", &year, &month); err != nil {
		return 0, 0, fmt.Errorf("month %q: expected YYYY-MM: %w", key, ErrInvalidDate)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month %q: out of range: %w", key, ErrInvalidDate)
	}
	return year, month, nil
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
