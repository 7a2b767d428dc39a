package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

func TestByCategoryGroupsAndCounts(t *testing.T) {
	txs := []core.Transaction{
		tx("2026-01-05", "Groceries", "-50.00"),
		tx("2026-01-12", "Groceries", "-25.00"),
		tx("2026-01-20", "Income", "2000.00"),
		tx("2026-02-01", "Groceries", "-10.00"), // other month
	}

	groups := ByCategory(txs, AggregateOptions{Month: "2026-01"})
	require.Len(t, groups, 2)

	g := groups["Groceries"]
	assert.True(t, g.Total.Equal(dec("-75.00")), "got %s", g.Total)
	assert.Equal(t, 2, g.Count)

	inc := groups["Income"]
	assert.True(t, inc.Total.Equal(dec("2000.00")))
	assert.Equal(t, 1, inc.Count)
}

func TestByCategoryBlankDefaultsToUncategorized(t *testing.T) {
	txs := []core.Transaction{
		tx("2026-01-05", "", "-12.00"),
		tx("2026-01-06", "  ", "-8.00"),
	}
	groups := ByCategory(txs, AggregateOptions{})
	require.Len(t, groups, 1)
	g := groups[core.UncategorizedLabel]
	assert.Equal(t, 2, g.Count)
	assert.True(t, g.Total.Equal(dec("-20.00")))
}

func TestByCategoryExcludedCategoriesDropped(t *testing.T) {
	txs := []core.Transaction{
		tx("2026-01-05", "Groceries", "-50.00"),
		tx("2026-01-06", "Transfers & Payments", "-500.00"),
	}
	groups := ByCategory(txs, AggregateOptions{
		Exclude: ExclusionSet("Transfers & Payments"),
	})
	_, present := groups["Transfers & Payments"]
	assert.False(t, present, "excluded category must be dropped, not zeroed")
	assert.Len(t, groups, 1)
}

func TestSignedSumMatchesRawSum(t *testing.T) {
	// Union of group totals must equal the raw sum of the filtered set.
	txs := []core.Transaction{
		tx("2026-01-01", "Groceries", "-50.00"),
		tx("2026-01-02", "Dining", "-30.00"),
		tx("2026-01-03", "Income", "2000.00"),
		tx("2026-01-04", "Transfers & Payments", "-100.00"),
	}
	exclude := ExclusionSet("Transfers & Payments")
	groups := ByCategory(txs, AggregateOptions{Exclude: exclude})

	sum := dec("0")
	for _, g := range groups {
		sum = sum.Add(g.Total)
	}
	want := dec("0")
	for _, x := range txs {
		if _, skip := exclude[x.CategoryLabel()]; skip {
			continue
		}
		want = want.Add(x.Amount)
	}
	assert.True(t, sum.Equal(want), "group sum %s != raw sum %s", sum, want)
}

func TestByCategoryMonthExpensesOnly(t *testing.T) {
	txs := []core.Transaction{
		tx("2026-01-05", "Groceries", "-50.00"),
		tx("2026-01-06", "Groceries", "200.00"), // refund: not spend
		tx("2026-02-05", "Groceries", "-70.00"),
	}
	matrix := ByCategoryMonth(txs, nil)
	require.Contains(t, matrix, "Groceries")
	assert.True(t, matrix["Groceries"]["2026-01"].Equal(dec("50.00")))
	assert.True(t, matrix["Groceries"]["2026-02"].Equal(dec("70.00")))
}

func TestSortedByAbsTotal(t *testing.T) {
	groups := map[string]CategoryTotal{
		"A": {Category: "A", Total: dec("-10")},
		"B": {Category: "B", Total: dec("500")},
		"C": {Category: "C", Total: dec("-90")},
	}
	sorted := SortedByAbsTotal(groups)
	require.Len(t, sorted, 3)
	assert.Equal(t, "B", sorted[0].Category)
	assert.Equal(t, "C", sorted[1].Category)
	assert.Equal(t, "A", sorted[2].Category)
}
