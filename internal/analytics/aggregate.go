// Package analytics turns a flat ledger of transactions into derived
// reporting views: monthly breakdowns, cash-flow series, budget status,
// spending-risk detection, tax grouping and tenant utility reconciliation.
//
// Every function is a pure computation over an immutable transaction
// snapshot. Nothing here performs I/O, reads clocks implicitly, or retains
// state across calls; callers inject the reference time.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// CategoryTotal is the signed sum and count for one (category, month) group.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// AggregateOptions narrows which transactions take part in a grouping.
type AggregateOptions struct {
	// Month restricts to one YYYY-MM calendar month when non-empty.
	Month string
	// Exclude drops these categories from the output entirely (used to
	// strip pure money-movement categories from spend/income totals).
	Exclude map[string]struct{}
}

// ExclusionSet builds a category exclusion set from a list of names.
func ExclusionSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// ByCategory groups a transaction set by category, accumulating the signed
// sum and count per group. Every transaction lands in exactly one group;
// excluded categories are dropped from the output, not zeroed. Output order
// is unspecified.
func ByCategory(txs []core.Transaction, opts AggregateOptions) map[string]CategoryTotal {
	out := make(map[string]CategoryTotal)
	for _, t := range txs {
		if opts.Month != "" && t.Date.MonthKey() != opts.Month {
			continue
		}
		cat := t.CategoryLabel()
		if _, skip := opts.Exclude[cat]; skip {
			continue
		}
		ct := out[cat]
		ct.Category = cat
		ct.Total = ct.Total.Add(t.Amount)
		ct.Count++
		out[cat] = ct
	}
	return out
}

// ByCategoryMonth builds the category x month expense matrix used by the
// risk detector: positive spend totals (abs of negative amounts only),
// keyed by category then YYYY-MM month.
func ByCategoryMonth(txs []core.Transaction, exclude map[string]struct{}) map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal)
	for _, t := range txs {
		spend := core.SpendAmount(t.Amount)
		if spend.IsZero() {
			continue
		}
		cat := t.CategoryLabel()
		if _, skip := exclude[cat]; skip {
			continue
		}
		months := out[cat]
		if months == nil {
			months = make(map[string]decimal.Decimal)
			out[cat] = months
		}
		months[t.Date.MonthKey()] = months[t.Date.MonthKey()].Add(spend)
	}
	return out
}

// pct1 renders a ratio as a percentage rounded to one decimal place,
// half away from zero.
func pct1(ratio decimal.Decimal) float64 {
	return ratio.Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// SortedByAbsTotal flattens a category grouping into a slice ordered by
// abs(signed sum) descending, ties broken by category name for determinism.
func SortedByAbsTotal(groups map[string]CategoryTotal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(groups))
	for _, ct := range groups {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Total.Abs(), out[j].Total.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
