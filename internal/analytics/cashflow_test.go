package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

func TestBuildCashFlowSeries(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("2026-01-05", "Income", "3000.00"),
		tx("2026-01-10", "Groceries", "-400.00"),
		tx("2026-02-05", "Income", "3000.00"),
		tx("2026-02-12", "Dining", "-150.00"),
		tx("2026-03-01", "Groceries", "-75.00"),
		tx("2025-12-20", "Income", "9999.00"), // before the window
	}

	points := BuildCashFlow(txs, now, 3, ExclusionSet(DefaultMoneyMovementCategories...))
	require.Len(t, points, 3)

	assert.Equal(t, "2026-01", points[0].Month, "oldest first")
	assert.Equal(t, 3000.0, points[0].Income)
	assert.Equal(t, 400.0, points[0].Expenses)
	assert.Equal(t, 2600.0, points[0].Net)
	assert.Equal(t, "2026-02", points[1].Month)
	assert.Equal(t, "2026-03", points[2].Month)
	assert.Equal(t, 0.0, points[2].Income)
	assert.Equal(t, 75.0, points[2].Expenses)
	assert.Equal(t, -75.0, points[2].Net)
}

func TestBuildCashFlowEmptyMonthsStillPresent(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	points := BuildCashFlow(nil, now, 6, nil)
	require.Len(t, points, 6)
	for _, p := range points {
		assert.Equal(t, 0.0, p.Income)
		assert.Equal(t, 0.0, p.Expenses)
		assert.Equal(t, 0.0, p.Net)
	}
	assert.Equal(t, "2025-10", points[0].Month, "window crosses the year boundary")
}

func TestBuildCashFlowTransfersExcludedFromExpensesOnly(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		tx("2026-01-05", "Transfers & Payments", "-500.00"),
		tx("2026-01-06", "Transfers & Payments", "500.00"),
	}

	points := BuildCashFlow(txs, now, 1, ExclusionSet(DefaultMoneyMovementCategories...))
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].Expenses, "transfer out is not spend")
	assert.Equal(t, 500.0, points[0].Income, "all positive amounts count as income")
}

func TestBuildCashFlowInvalidCount(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, BuildCashFlow(nil, now, 0, nil))
}
