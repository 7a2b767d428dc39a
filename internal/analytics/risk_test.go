package analytics

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

var riskNow = time.Date(2026, 4, 15, 12, 0, 0, 0, time.UTC)

// spendHistory lays down one expense per month for a category, oldest
// first, ending at the current month.
func spendHistory(category string, amounts ...string) []core.Transaction {
	months := core.MonthsEnding(riskNow, len(amounts))
	out := make([]core.Transaction, 0, len(amounts))
	for i, amt := range amounts {
		if amt == "0" {
			continue
		}
		out = append(out, tx(months[i]+"-10", category, "-"+amt))
	}
	return out
}

func TestDetectSpendingRisksCritical(t *testing.T) {
	txs := spendHistory("Dining", "0", "100", "100", "100", "300")

	report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
	require.Len(t, report.Risks, 1)

	r := report.Risks[0]
	assert.Equal(t, "Dining", r.Category)
	assert.Equal(t, 300.0, r.CurrentSpend)
	assert.Equal(t, 100.0, r.AvgSpend)
	assert.Equal(t, 200.0, r.DeltaDollars)
	assert.Equal(t, 200, r.DeltaPercent)
	assert.Equal(t, LevelCritical, r.Level)
	require.Len(t, r.MonthlyHistory, 5)
	assert.Equal(t, "2026-04", report.CurrentMonth)
	assert.Equal(t, 1, report.TotalCategories)
	assert.Equal(t, 0, report.OnTrackCount)
}

func TestDetectSpendingRisksLevels(t *testing.T) {
	tests := []struct {
		name    string
		current string
		level   string
	}{
		{"elevated at +50%", "150", LevelElevated},
		{"high at +100%", "200", LevelHigh},
		{"critical above +100%", "201", LevelCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := spendHistory("Dining", "0", "100", "100", "100", tt.current)
			report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
			require.Len(t, report.Risks, 1)
			assert.Equal(t, tt.level, report.Risks[0].Level)
		})
	}
}

func TestDetectSpendingRisksNormalCountsOnTrack(t *testing.T) {
	txs := spendHistory("Groceries", "0", "100", "100", "100", "105")

	report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
	assert.Empty(t, report.Risks)
	assert.Equal(t, 1, report.OnTrackCount)
	assert.Equal(t, 1, report.TotalCategories)
}

func TestDetectSpendingRisksInsufficientHistoryInvisible(t *testing.T) {
	// Only 2 of the 3 prior months have data: the category must not
	// appear at all, neither as risk nor on-track.
	txs := spendHistory("Hobby", "0", "0", "100", "100", "400")

	report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
	assert.Empty(t, report.Risks)
	assert.Equal(t, 0, report.OnTrackCount)
	assert.Equal(t, 0, report.TotalCategories)
}

func TestDetectSpendingRisksNoiseFloor(t *testing.T) {
	// Spend of $15 is under the $20 floor: never in risks regardless of
	// delta.
	txs := spendHistory("Coffee", "0", "5", "5", "5", "15")

	report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
	assert.Empty(t, report.Risks)
	// Delta is abnormal (+200%), so it does not count as on-track either.
	assert.Equal(t, 0, report.OnTrackCount)
	assert.Equal(t, 1, report.TotalCategories)
}

func TestDetectSpendingRisksExcludedCategories(t *testing.T) {
	txs := spendHistory("Transfers & Payments", "0", "100", "100", "100", "900")

	report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
	assert.Empty(t, report.Risks)
	assert.Equal(t, 0, report.TotalCategories)
}

func TestDetectSpendingRisksCapsAndSorts(t *testing.T) {
	var txs []core.Transaction
	cats := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for i, cat := range cats {
		// Deltas grow with i: 100 avg, current 200+i*50.
		current := 200 + i*50
		txs = append(txs, spendHistory(cat, "0", "100", "100", "100", strconv.Itoa(current))...)
	}

	report := DetectSpendingRisks(txs, riskNow, DefaultRiskConfig())
	require.Len(t, report.Risks, 6)
	assert.Equal(t, "H", report.Risks[0].Category, "largest delta first")
	for i := 1; i < len(report.Risks); i++ {
		assert.GreaterOrEqual(t, report.Risks[i-1].DeltaPercent, report.Risks[i].DeltaPercent)
	}
	assert.Equal(t, 8, report.TotalCategories)
}
