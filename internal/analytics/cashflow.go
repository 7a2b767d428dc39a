package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// CashFlowPoint is one month's income, expenses and net.
type CashFlowPoint struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// BuildCashFlow computes income/expenses/net for n consecutive months
// ending at the month containing now, oldest first. Income sums all
// positive amounts with no exclusion; expenses exclude money-movement
// categories.
func BuildCashFlow(txs []core.Transaction, now time.Time, n int, exclude map[string]struct{}) []CashFlowPoint {
	months := core.MonthsEnding(now, n)
	if months == nil {
		return []CashFlowPoint{}
	}

	type bucket struct {
		income   decimal.Decimal
		expenses decimal.Decimal
	}
	byMonth := make(map[string]*bucket, len(months))
	for _, m := range months {
		byMonth[m] = &bucket{}
	}

	for _, t := range txs {
		b, ok := byMonth[t.Date.MonthKey()]
		if !ok {
			continue
		}
		b.income = b.income.Add(core.IncomeAmount(t.Amount))
		if _, skip := exclude[t.CategoryLabel()]; skip {
			continue
		}
		b.expenses = b.expenses.Add(core.SpendAmount(t.Amount))
	}

	out := make([]CashFlowPoint, 0, len(months))
	for _, m := range months {
		b := byMonth[m]
		out = append(out, CashFlowPoint{
			Month:    m,
			Income:   core.Money2(b.income),
			Expenses: core.Money2(b.expenses),
			Net:      core.Money2(b.income.Sub(b.expenses)),
		})
	}
	return out
}
