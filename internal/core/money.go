// Package core holds the ledger domain model shared by every report.
//
// This file centralizes the money sign convention: expense = negative
// amount, income = positive amount. Components must go through these
// helpers instead of re-deriving sign logic locally.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IsExpense reports whether a signed amount represents an outflow.
func IsExpense(amount decimal.Decimal) bool {
	return amount.IsNegative()
}

// IsIncome reports whether a signed amount represents an inflow.
func IsIncome(amount decimal.Decimal) bool {
	return amount.IsPositive()
}

// SpendAmount returns the positive spend represented by a signed amount:
// abs(amount) for expenses, zero otherwise. Callers that need "spend" as a
// positive number take it from here, never by flipping signs upstream.
func SpendAmount(amount decimal.Decimal) decimal.Decimal {
	if IsExpense(amount) {
		return amount.Abs()
	}
	return decimal.Zero
}

// IncomeAmount returns the positive inflow represented by a signed amount,
// zero for expenses.
func IncomeAmount(amount decimal.Decimal) decimal.Decimal {
	if IsIncome(amount) {
		return amount
	}
	return decimal.Zero
}

// Round2 rounds a currency total to two decimal places (half away from zero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Money2 converts a decimal total into the float64 shape used by report
// payloads, rounded to two decimal places.
func Money2(d decimal.Decimal) float64 {
	return Round2(d).InexactFloat64()
}

// ParseAmount parses a decimal currency string, accepting both dot and comma
// decimal separators. Unparseable values yield zero rather than an error;
// the feeding data source (bank exports, spreadsheet rows) is not fully
// under this engine's control.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
