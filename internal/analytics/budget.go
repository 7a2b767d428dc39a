package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

const (
	StatusOnTrack  = "on_track"
	StatusWarning  = "warning"
	StatusExceeded = "exceeded"
)

// BudgetStatus compares one category's monthly spend to its configured limit.
type BudgetStatus struct {
	CategoryName   string  `json:"category_name"`
	MonthlyLimit   float64 `json:"monthly_limit"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
	AlertThreshold int     `json:"alert_threshold"`
	Status         string  `json:"status"`
}

// BudgetReport is the budget-vs-actual view for one month.
type BudgetReport struct {
	Budgets []BudgetStatus `json:"budgets"`
	Month   string         `json:"month"`
}

// EvaluateBudgets computes the status of every active budget against the
// spend recorded in the target YYYY-MM month. Pure function of
// (budgets, transactions, month).
func EvaluateBudgets(budgets []core.Budget, txs []core.Transaction, month string) BudgetReport {
	report := BudgetReport{Month: month, Budgets: []BudgetStatus{}}

	spendByCat := ByCategoryMonth(txs, nil)

	for _, b := range budgets {
		if !b.IsActive {
			continue
		}
		spent := spendByCat[b.CategoryName][month]

		var pct float64
		if b.MonthlyLimit.IsPositive() {
			pct = pct1(spent.Div(b.MonthlyLimit))
		}
		// pct stays 0 when the limit is <= 0: never divide by zero.

		status := StatusOnTrack
		switch {
		case pct >= 100:
			status = StatusExceeded
		case pct >= float64(b.Threshold()):
			status = StatusWarning
		}

		remaining := b.MonthlyLimit.Sub(spent)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		report.Budgets = append(report.Budgets, BudgetStatus{
			CategoryName:   b.CategoryName,
			MonthlyLimit:   core.Money2(b.MonthlyLimit),
			Spent:          core.Money2(spent),
			Remaining:      core.Money2(remaining),
			PercentageUsed: pct,
			AlertThreshold: b.Threshold(),
			Status:         status,
		})
	}

	return report
}
