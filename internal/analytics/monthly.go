package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// DefaultMoneyMovementCategories are stripped from spend/income totals to
// avoid double-counting transfers and internal investment moves.
var DefaultMoneyMovementCategories = []string{
	"Transfers & Payments",
	"Investments",
}

// TopTransactionCount is how many transactions the monthly breakdown keeps.
const TopTransactionCount = 10

// CategoryBreakdownEntry is a signed per-category total within one month.
type CategoryBreakdownEntry struct {
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DailySpend is one calendar day's expense total plus the running
// cumulative sum for the month.
type DailySpend struct {
	Date       string  `json:"date"`
	Amount     float64 `json:"amount"`
	Cumulative float64 `json:"cumulative"`
}

// TransactionView is the report shape of a single ledger entry.
type TransactionView struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// MonthlyBreakdown is the full single-month report.
type MonthlyBreakdown struct {
	Month             string                   `json:"month"`
	Income            float64                  `json:"income"`
	Expenses          float64                  `json:"expenses"`
	Net               float64                  `json:"net"`
	CategoryBreakdown []CategoryBreakdownEntry `json:"category_breakdown"`
	DailySpending     []DailySpend             `json:"daily_spending"`
	TopTransactions   []TransactionView        `json:"top_transactions"`
}

// BuildMonthlyBreakdown computes income, expenses, net, the category
// ranking, cumulative daily spend and the top transactions for one calendar
// month. The month must match YYYY-MM exactly; anything else is rejected
// before computation. Money-movement categories are excluded throughout.
func BuildMonthlyBreakdown(txs []core.Transaction, month string, now time.Time, exclude map[string]struct{}) (MonthlyBreakdown, error) {
	year, mon, err := core.ParseMonthKey(month)
	if err != nil {
		return MonthlyBreakdown{}, err
	}

	out := MonthlyBreakdown{
		Month:             month,
		CategoryBreakdown: []CategoryBreakdownEntry{},
		DailySpending:     []DailySpend{},
		TopTransactions:   []TransactionView{},
	}

	income := decimal.Zero
	expenses := decimal.Zero
	daily := make(map[int]decimal.Decimal)
	var inMonth []core.Transaction

	for _, t := range txs {
		if t.Date.MonthKey() != month {
			continue
		}
		if _, skip := exclude[t.CategoryLabel()]; skip {
			continue
		}
		inMonth = append(inMonth, t)
		income = income.Add(core.IncomeAmount(t.Amount))
		spend := core.SpendAmount(t.Amount)
		expenses = expenses.Add(spend)
		if spend.IsPositive() {
			daily[t.Date.Day()] = daily[t.Date.Day()].Add(spend)
		}
	}

	out.Income = core.Money2(income)
	out.Expenses = core.Money2(expenses)
	out.Net = core.Money2(income.Sub(expenses))

	// Category ranking by abs(total) descending.
	groups := ByCategory(txs, AggregateOptions{Month: month, Exclude: exclude})
	absSum := decimal.Zero
	for _, g := range groups {
		absSum = absSum.Add(g.Total.Abs())
	}
	for _, g := range SortedByAbsTotal(groups) {
		pct := 0.0
		if absSum.IsPositive() {
			pct = pct1(g.Total.Abs().Div(absSum))
		}
		out.CategoryBreakdown = append(out.CategoryBreakdown, CategoryBreakdownEntry{
			Category:   g.Category,
			Total:      core.Money2(g.Total),
			Count:      g.Count,
			Percentage: pct,
		})
	}

	// Daily cumulative spend: day 1 through the last day of the month, or
	// through today when the target month is still in progress.
	lastDay := core.DaysInMonth(year, mon)
	if now.Year() == year && int(now.Month()) == mon && now.Day() < lastDay {
		lastDay = now.Day()
	}
	cumulative := decimal.Zero
	for day := 1; day <= lastDay; day++ {
		cumulative = cumulative.Add(daily[day])
		out.DailySpending = append(out.DailySpending, DailySpend{
			Date:       fmt.Sprintf("%s-%02d", month, day),
			Amount:     core.Money2(daily[day]),
			Cumulative: core.Money2(cumulative),
		})
	}

	// Top transactions by abs(amount), ties keeping original order.
	ranked := make([]core.Transaction, len(inMonth))
	copy(ranked, inMonth)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Amount.Abs().GreaterThan(ranked[j].Amount.Abs())
	})
	if len(ranked) > TopTransactionCount {
		ranked = ranked[:TopTransactionCount]
	}
	for _, t := range ranked {
		out.TopTransactions = append(out.TopTransactions, TransactionView{
			ID:          t.ID,
			Date:        t.Date.ISO(),
			Description: t.Description,
			Amount:      core.Money2(t.Amount),
			Category:    t.CategoryLabel(),
		})
	}

	return out, nil
}
