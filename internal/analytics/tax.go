package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// OtherExpensesGroup catches every category not explicitly mapped.
const OtherExpensesGroup = "Other Expenses"

// GroupDef maps one tax-form line item onto the fine-grained categories
// that feed it.
type GroupDef struct {
	Name       string
	IsIncome   bool
	Categories []string
}

// DefaultT776Groups is the fixed, ordered group table for the rental
// property statement. Unmapped categories fall into Other Expenses.
func DefaultT776Groups() []GroupDef {
	return []GroupDef{
		{Name: "Gross Rental Income", IsIncome: true, Categories: []string{"Rental Income"}},
		{Name: "Insurance", Categories: []string{"Insurance"}},
		{Name: "Interest & Bank Charges", Categories: []string{"Fees & Charges"}},
		{Name: "Maintenance & Repairs", Categories: []string{"Housing"}},
		{Name: "Property Taxes", Categories: []string{"Property Tax"}},
		{Name: "Utilities", Categories: []string{"Electricity", "Gas", "Water"}},
		{Name: "Renovations", Categories: []string{"Renovations"}},
	}
}

// TaxCategory is one category's year-over-year totals, either inside a
// group (children) or in the flat breakdown.
type TaxCategory struct {
	Category          string   `json:"category"`
	IsIncome          bool     `json:"is_income"`
	SelectedYearTotal float64  `json:"selected_year_total"`
	PrevYearTotal     float64  `json:"prev_year_total"`
	DeltaDollars      float64  `json:"delta_dollars"`
	DeltaPercent      *float64 `json:"delta_percent"`
}

// TaxGroup is one reporting bucket with its year-over-year totals and the
// per-category children that feed it.
type TaxGroup struct {
	GroupName         string        `json:"group_name"`
	IsIncome          bool          `json:"is_income"`
	SelectedYearTotal float64       `json:"selected_year_total"`
	PrevYearTotal     float64       `json:"prev_year_total"`
	DeltaDollars      float64       `json:"delta_dollars"`
	DeltaPercent      *float64      `json:"delta_percent"`
	Children          []TaxCategory `json:"children"`
}

// AnnualTotals summarizes one year's raw income/expenses/net.
type AnnualTotals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// MonthlyTotal is one month of the selected year.
type MonthlyTotal struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// TaxSummary is the full tax-form-oriented report for a selected year and
// its immediately preceding year.
type TaxSummary struct {
	Year              int            `json:"year"`
	PrevYear          int            `json:"prev_year"`
	AnnualSummary     AnnualTotals   `json:"annual_summary"`
	PrevAnnualSummary AnnualTotals   `json:"prev_annual_summary"`
	T776Summary       []TaxGroup     `json:"t776_summary"`
	MonthlyData       []MonthlyTotal `json:"monthly_data"`
	CategoryBreakdown []TaxCategory  `json:"category_breakdown"`
}

// BuildTaxSummary groups per-category totals into the fixed reporting table
// for the selected year and the prior year. Every category lands in exactly
// one group, so the union of group totals equals the flat breakdown total.
func BuildTaxSummary(txs []core.Transaction, year int, groups []GroupDef) TaxSummary {
	prevYear := year - 1
	out := TaxSummary{
		Year:              year,
		PrevYear:          prevYear,
		T776Summary:       []TaxGroup{},
		MonthlyData:       []MonthlyTotal{},
		CategoryBreakdown: []TaxCategory{},
	}

	selected := yearCategoryTotals(txs, year)
	previous := yearCategoryTotals(txs, prevYear)

	out.AnnualSummary = annualTotals(txs, year)
	out.PrevAnnualSummary = annualTotals(txs, prevYear)
	out.MonthlyData = monthlyTotals(txs, year)

	// Income flag per category is inferred from whichever year's raw total
	// is positive. It is reporting metadata only; whether math uses raw or
	// abs totals follows the owning group.
	incomeByCat := func(cat string) bool {
		return selected[cat].IsPositive() || previous[cat].IsPositive()
	}

	mapped := make(map[string]string) // category -> group name
	groupIncome := make(map[string]bool)
	ordered := append([]GroupDef{}, groups...)
	for _, g := range ordered {
		for _, cat := range g.Categories {
			mapped[cat] = g.Name
		}
		groupIncome[g.Name] = g.IsIncome
	}

	// Collect catch-all categories in deterministic order.
	var otherCats []string
	seen := make(map[string]struct{})
	for cat := range selected {
		seen[cat] = struct{}{}
	}
	for cat := range previous {
		seen[cat] = struct{}{}
	}
	for cat := range seen {
		if _, ok := mapped[cat]; !ok {
			otherCats = append(otherCats, cat)
		}
	}
	sort.Strings(otherCats)
	ordered = append(ordered, GroupDef{Name: OtherExpensesGroup, Categories: otherCats})

	for _, g := range ordered {
		selTotal := decimal.Zero
		prevTotal := decimal.Zero
		children := []TaxCategory{}

		for _, cat := range g.Categories {
			selRaw, inSel := selected[cat]
			prevRaw, inPrev := previous[cat]
			if !inSel && !inPrev {
				continue
			}
			sel, prev := selRaw, prevRaw
			if !g.IsIncome {
				sel, prev = selRaw.Abs(), prevRaw.Abs()
			}
			if sel.IsZero() && prev.IsZero() {
				continue
			}
			selTotal = selTotal.Add(sel)
			prevTotal = prevTotal.Add(prev)
			children = append(children, TaxCategory{
				Category:          cat,
				IsIncome:          incomeByCat(cat),
				SelectedYearTotal: core.Money2(sel),
				PrevYearTotal:     core.Money2(prev),
				DeltaDollars:      core.Money2(sel.Sub(prev)),
				DeltaPercent:      deltaPercent(sel, prev),
			})
		}

		if selTotal.IsZero() && prevTotal.IsZero() {
			continue // nothing in either year
		}
		out.T776Summary = append(out.T776Summary, TaxGroup{
			GroupName:         g.Name,
			IsIncome:          g.IsIncome,
			SelectedYearTotal: core.Money2(selTotal),
			PrevYearTotal:     core.Money2(prevTotal),
			DeltaDollars:      core.Money2(selTotal.Sub(prevTotal)),
			DeltaPercent:      deltaPercent(selTotal, prevTotal),
			Children:          children,
		})
	}

	// Flat per-category view, sorted by selected-year total descending.
	// Uses the same raw-vs-abs convention as the groups so the two views
	// reconcile exactly.
	flatCats := make([]string, 0, len(seen))
	for cat := range seen {
		flatCats = append(flatCats, cat)
	}
	sort.Strings(flatCats)
	for _, cat := range flatCats {
		sel, prev := selected[cat], previous[cat]
		// The owning group decides raw vs abs (catch-all is an expense
		// group), so an expense category that nets positive in one year,
		// e.g. a refund, reconciles with its group total.
		if !groupIncome[mapped[cat]] {
			sel, prev = sel.Abs(), prev.Abs()
		}
		if sel.IsZero() && prev.IsZero() {
			continue
		}
		out.CategoryBreakdown = append(out.CategoryBreakdown, TaxCategory{
			Category:          cat,
			IsIncome:          incomeByCat(cat),
			SelectedYearTotal: core.Money2(sel),
			PrevYearTotal:     core.Money2(prev),
			DeltaDollars:      core.Money2(sel.Sub(prev)),
			DeltaPercent:      deltaPercent(sel, prev),
		})
	}
	sort.SliceStable(out.CategoryBreakdown, func(i, j int) bool {
		return out.CategoryBreakdown[i].SelectedYearTotal > out.CategoryBreakdown[j].SelectedYearTotal
	})

	return out
}

// deltaPercent returns (selected-prev)/prev*100, or nil when there is no
// prior-year baseline. nil signals "no baseline", which is distinct from a
// zero change.
func deltaPercent(selected, prev decimal.Decimal) *float64 {
	if prev.IsZero() {
		return nil
	}
	pct := pct1(selected.Sub(prev).Div(prev))
	return &pct
}

func yearCategoryTotals(txs []core.Transaction, year int) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Date.Year() != year {
			continue
		}
		cat := t.CategoryLabel()
		out[cat] = out[cat].Add(t.Amount)
	}
	return out
}

func annualTotals(txs []core.Transaction, year int) AnnualTotals {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range txs {
		if t.Date.Year() != year {
			continue
		}
		income = income.Add(core.IncomeAmount(t.Amount))
		expenses = expenses.Add(core.SpendAmount(t.Amount))
	}
	return AnnualTotals{
		Income:   core.Money2(income),
		Expenses: core.Money2(expenses),
		Net:      core.Money2(income.Sub(expenses)),
	}
}

func monthlyTotals(txs []core.Transaction, year int) []MonthlyTotal {
	type bucket struct{ income, expenses decimal.Decimal }
	buckets := make([]bucket, 12)
	for _, t := range txs {
		if t.Date.Year() != year {
			continue
		}
		m := int(t.Date.Month()) - 1
		buckets[m].income = buckets[m].income.Add(core.IncomeAmount(t.Amount))
		buckets[m].expenses = buckets[m].expenses.Add(core.SpendAmount(t.Amount))
	}
	out := make([]MonthlyTotal, 0, 12)
	for i, b := range buckets {
		out = append(out, MonthlyTotal{
			Month:    core.FormatMonthKey(year, i+1),
			Income:   core.Money2(b.income),
			Expenses: core.Money2(b.expenses),
			Net:      core.Money2(b.income.Sub(b.expenses)),
		})
	}
	return out
}
