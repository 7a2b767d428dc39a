package analytics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// PayerRule classifies a tenant's positive rental-income payments into
// utility contributions. Rules are data, not code: household-specific
// arrangements live in configuration. Exactly one mode applies per rule:
//   - BaseRent > 0: only the excess over the flat rent counts.
//   - MaxContribution > 0: the payment counts in full, but only when it is
//     at or below the cap; larger payments are rent, not reimbursement.
type PayerRule struct {
	Name            string
	Match           string // case-insensitive substring of the description
	BaseRent        decimal.Decimal
	MaxContribution decimal.Decimal
}

// UtilityConfig drives the tenant utility reconciliation.
type UtilityConfig struct {
	ElectricityCategory string
	GasCategory         string
	WaterCategory       string
	IncomeCategory      string
	Payers              []PayerRule
}

// DefaultUtilityConfig returns the compatibility defaults for the rental
// property: the three utility categories from the import rules, rental
// income contributions from two tenants (flat rent 2200.00 upstairs,
// 500.00 reimbursement cap for the basement).
func DefaultUtilityConfig() UtilityConfig {
	return UtilityConfig{
		ElectricityCategory: "Electricity",
		GasCategory:         "Gas",
		WaterCategory:       "Water",
		IncomeCategory:      "Rental Income",
		Payers: []PayerRule{
			{Name: "Mariusz", Match: "MARIUSZ", BaseRent: decimal.NewFromInt(2200)},
			{Name: "Basement", Match: "E-TRANSFER", MaxContribution: decimal.NewFromInt(500)},
		},
	}
}

// UtilityMonthRecord is one month of the billed-vs-collected ledger.
type UtilityMonthRecord struct {
	Month          string             `json:"month"`
	Electricity    float64            `json:"electricity"`
	Gas            float64            `json:"gas"`
	Water          float64            `json:"water"`
	TotalBilled    float64            `json:"total_billed"`
	Contributions  map[string]float64 `json:"contributions_by_payer"`
	TotalCollected float64            `json:"total_collected"`
	Delta          float64            `json:"delta"`
	RunningBalance float64            `json:"running_balance"`
	Pending        bool               `json:"pending"`
}

// ReconcileUtilities builds the per-month utility cost-sharing ledger for
// the target year. Billed amounts and contributions accumulate from the
// full transaction history; the running balance carries forward across
// every billed month in strictly ascending calendar order and is never
// reset, so the year view reflects debts inherited from earlier years.
func ReconcileUtilities(txs []core.Transaction, year int, cfg UtilityConfig) []UtilityMonthRecord {
	type billed struct{ electricity, gas, water decimal.Decimal }
	billedByMonth := make(map[string]*billed)
	contribByMonth := make(map[string]map[string]decimal.Decimal)

	monthBilled := func(m string) *billed {
		b := billedByMonth[m]
		if b == nil {
			b = &billed{}
			billedByMonth[m] = b
		}
		return b
	}

	for _, t := range txs {
		m := t.Date.MonthKey()
		spend := core.SpendAmount(t.Amount)
		switch t.CategoryLabel() {
		case cfg.ElectricityCategory:
			if spend.IsPositive() {
				monthBilled(m).electricity = monthBilled(m).electricity.Add(spend)
			}
		case cfg.GasCategory:
			if spend.IsPositive() {
				monthBilled(m).gas = monthBilled(m).gas.Add(spend)
			}
		case cfg.WaterCategory:
			if spend.IsPositive() {
				monthBilled(m).water = monthBilled(m).water.Add(spend)
			}
		case cfg.IncomeCategory:
			if !core.IsIncome(t.Amount) {
				continue
			}
			payer, amount := classifyContribution(t, cfg.Payers)
			if payer == "" || !amount.IsPositive() {
				continue
			}
			if contribByMonth[m] == nil {
				contribByMonth[m] = make(map[string]decimal.Decimal)
			}
			contribByMonth[m][payer] = contribByMonth[m][payer].Add(amount)
		}
	}

	// Billed months, strictly ascending. YYYY-MM keys sort correctly as
	// strings.
	months := make([]string, 0, len(billedByMonth))
	for m := range billedByMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	yearPrefix := core.FormatMonthKey(year, 1)[:4] + "-"
	out := []UtilityMonthRecord{}
	running := decimal.Zero

	for _, m := range months {
		b := billedByMonth[m]
		totalBilled := b.electricity.Add(b.gas).Add(b.water)
		if !totalBilled.IsPositive() {
			continue
		}

		collected := decimal.Zero
		contributions := make(map[string]float64)
		for payer, amt := range contribByMonth[m] {
			collected = collected.Add(amt)
			contributions[payer] = core.Money2(amt)
		}

		delta := collected.Sub(totalBilled)
		running = running.Add(delta)

		if !strings.HasPrefix(m, yearPrefix) {
			continue // balance still accrues; row stays out of the year view
		}
		out = append(out, UtilityMonthRecord{
			Month:          m,
			Electricity:    core.Money2(b.electricity),
			Gas:            core.Money2(b.gas),
			Water:          core.Money2(b.water),
			TotalBilled:    core.Money2(totalBilled),
			Contributions:  contributions,
			TotalCollected: core.Money2(collected),
			Delta:          core.Money2(delta),
			RunningBalance: core.Money2(running),
			Pending:        collected.IsZero() && totalBilled.IsPositive(),
		})
	}

	return out
}

// classifyContribution applies the first matching payer rule to a positive
// rental-income transaction and returns the utility share it represents.
func classifyContribution(t core.Transaction, rules []PayerRule) (string, decimal.Decimal) {
	desc := strings.ToUpper(t.Description)
	for _, r := range rules {
		if r.Match == "" || !strings.Contains(desc, strings.ToUpper(r.Match)) {
			continue
		}
		switch {
		case r.BaseRent.IsPositive():
			excess := t.Amount.Sub(r.BaseRent)
			if excess.IsNegative() {
				excess = decimal.Zero
			}
			return r.Name, excess
		case r.MaxContribution.IsPositive():
			if t.Amount.GreaterThan(r.MaxContribution) {
				return r.Name, decimal.Zero // rent, not reimbursement
			}
			return r.Name, t.Amount
		default:
			return r.Name, t.Amount
		}
	}
	return "", decimal.Zero
}
