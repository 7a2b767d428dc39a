package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

const (
	LevelNormal   = "normal"
	LevelElevated = "elevated"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// RiskConfig carries the detector's business constants. The defaults match
// the household arrangement the reports were originally tuned for; they are
// configuration, not code.
type RiskConfig struct {
	// PriorMonths is the size of the rolling averaging window.
	PriorMonths int
	// HistoryMonths is how many months (including the current one) are
	// retained for trend display. The larger of the two windows governs
	// how much transaction history must be present in the snapshot.
	HistoryMonths int
	// MinMonthsWithData is how many of the prior months must have non-zero
	// spend before a category is considered at all.
	MinMonthsWithData int
	// NoiseFloor excludes low-spend categories from the risk list.
	NoiseFloor decimal.Decimal
	// MaxResults caps the returned risk list.
	MaxResults int
	// Band boundaries, in percent deviation from the rolling average.
	ElevatedOver int
	HighOver     int
	CriticalOver int
	// Exclude lists non-spending categories invisible to the detector.
	Exclude map[string]struct{}
}

// DefaultRiskConfig returns the compatibility defaults: 3-month average,
// 5 months of trend history, $20 noise floor, top 6 results, 10/50/100
// percent bands.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		PriorMonths:       3,
		HistoryMonths:     5,
		MinMonthsWithData: 3,
		NoiseFloor:        decimal.NewFromInt(20),
		MaxResults:        6,
		ElevatedOver:      10,
		HighOver:          50,
		CriticalOver:      100,
		Exclude: ExclusionSet(
			"Transfers & Payments",
			"Investments",
			"Income",
			"Rental Income",
		),
	}
}

// MonthlySpend is one point of a category's spend history.
type MonthlySpend struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// RiskAssessment flags a category whose current-month spend deviates
// sharply from its rolling historical average.
type RiskAssessment struct {
	Category       string         `json:"category"`
	CurrentSpend   float64        `json:"current_spend"`
	AvgSpend       float64        `json:"avg_spend"`
	DeltaDollars   float64        `json:"delta_dollars"`
	DeltaPercent   int            `json:"delta_percent"`
	Level          string         `json:"level"`
	MonthlyHistory []MonthlySpend `json:"monthly_history"`
}

// RiskReport is the full detector output for one reference instant.
type RiskReport struct {
	CurrentMonth    string           `json:"current_month"`
	Risks           []RiskAssessment `json:"risks"`
	OnTrackCount    int              `json:"on_track_count"`
	TotalCategories int              `json:"total_categories"`
}

// DetectSpendingRisks compares each category's current-month spend to its
// rolling average over the prior months and classifies the deviation.
// Categories without enough history are invisible: they appear neither as
// risks nor in the on-track count.
func DetectSpendingRisks(txs []core.Transaction, now time.Time, cfg RiskConfig) RiskReport {
	window := cfg.HistoryMonths
	if cfg.PriorMonths+1 > window {
		window = cfg.PriorMonths + 1
	}
	months := core.MonthsEnding(now, window)
	currentMonth := months[len(months)-1]
	priorMonths := months[len(months)-1-cfg.PriorMonths : len(months)-1]

	report := RiskReport{CurrentMonth: currentMonth, Risks: []RiskAssessment{}}

	spend := ByCategoryMonth(txs, cfg.Exclude)

	categories := make([]string, 0, len(spend))
	for cat := range spend {
		categories = append(categories, cat)
	}
	sort.Strings(categories) // deterministic iteration

	for _, cat := range categories {
		byMonth := spend[cat]
		current := byMonth[currentMonth]
		if !current.IsPositive() {
			continue
		}

		withData := 0
		priorSum := decimal.Zero
		for _, m := range priorMonths {
			if byMonth[m].IsPositive() {
				withData++
			}
			priorSum = priorSum.Add(byMonth[m])
		}
		if withData < cfg.MinMonthsWithData {
			continue // insufficient history
		}
		avg := priorSum.Div(decimal.NewFromInt(int64(cfg.PriorMonths)))
		if !avg.IsPositive() {
			continue // undefined ratio
		}

		delta := current.Sub(avg)
		deltaPct := int(math.Round(delta.Div(avg).InexactFloat64() * 100))

		if deltaPct <= cfg.ElevatedOver {
			report.TotalCategories++
			report.OnTrackCount++
			continue
		}
		report.TotalCategories++
		if current.Cmp(cfg.NoiseFloor) <= 0 {
			// Below the noise floor: never surfaced as a risk.
			continue
		}

		level := LevelCritical
		switch {
		case deltaPct <= cfg.HighOver:
			level = LevelElevated
		case deltaPct <= cfg.CriticalOver:
			level = LevelHigh
		}

		history := make([]MonthlySpend, 0, len(months))
		for _, m := range months {
			history = append(history, MonthlySpend{Month: m, Amount: core.Money2(byMonth[m])})
		}

		report.Risks = append(report.Risks, RiskAssessment{
			Category:       cat,
			CurrentSpend:   core.Money2(current),
			AvgSpend:       core.Money2(avg),
			DeltaDollars:   core.Money2(delta),
			DeltaPercent:   deltaPct,
			Level:          level,
			MonthlyHistory: history,
		})
	}

	sort.SliceStable(report.Risks, func(i, j int) bool {
		return report.Risks[i].DeltaPercent > report.Risks[j].DeltaPercent
	})
	if len(report.Risks) > cfg.MaxResults {
		report.Risks = report.Risks[:cfg.MaxResults]
	}

	return report
}
