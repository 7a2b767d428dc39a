package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var nextTxID int64

// tx builds a ledger entry for tests. Dates are "YYYY-MM-DD".
func tx(date, category, amount string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	nextTxID++
	return core.Transaction{
		ID:          nextTxID,
		AccountID:   1,
		Date:        d,
		Description: category + " purchase",
		Amount:      dec(amount),
		Category:    category,
	}
}

func txDesc(date, category, description, amount string) core.Transaction {
	t := tx(date, category, amount)
	t.Description = description
	return t
}
