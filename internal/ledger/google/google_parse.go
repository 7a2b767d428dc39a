package google

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// Transaction rows: ID, AccountID, Date, Description, Amount, Category,
// Verified, ImportBatchID. Parsing is best-effort: rows with unusable dates
// are skipped and counted, amounts fall back to zero rather than failing
// the whole read.
func parseTransactionRows(rows [][]any) ([]core.Transaction, int) {
	var out []core.Transaction
	skipped := 0
	for i, row := range rows {
		cols := toStrings(row)
		if len(cols) < 5 {
			continue
		}
		id, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			// Header or malformed ID row.
			if i > 0 {
				skipped++
			}
			continue
		}
		date, err := core.ParseDate(cols[2])
		if err != nil {
			skipped++
			continue
		}
		accountID, _ := strconv.ParseInt(cols[1], 10, 64)
		t := core.Transaction{
			ID:          id,
			AccountID:   accountID,
			Date:        date,
			Description: cols[3],
			Amount:      core.ParseAmount(cols[4]),
		}
		if len(cols) > 5 {
			t.Category = cols[5]
		}
		if len(cols) > 6 {
			t.IsVerified = parseBool(cols[6])
		}
		if len(cols) > 7 {
			t.ImportBatchID = cols[7]
		}
		out = append(out, t)
	}
	return out, skipped
}

// Account rows: ID, Name, Type, InitialBalance, Active.
func parseAccountRows(rows [][]any) []core.Account {
	var out []core.Account
	for _, row := range rows {
		cols := toStrings(row)
		if len(cols) < 3 {
			continue
		}
		id, err := strconv.ParseInt(cols[0], 10, 64)
		if err != nil {
			continue
		}
		a := core.Account{
			ID:          id,
			Name:        cols[1],
			AccountType: core.AccountType(strings.ToLower(cols[2])),
			IsActive:    true,
		}
		if len(cols) > 3 {
			a.InitialBalance = core.ParseAmount(cols[3])
		}
		if len(cols) > 4 {
			a.IsActive = parseBool(cols[4])
		}
		if a.Validate() != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Budget rows: Category, MonthlyLimit, AlertThreshold, Active.
func parseBudgetRows(rows [][]any) []core.Budget {
	var out []core.Budget
	for i, row := range rows {
		cols := toStrings(row)
		if len(cols) < 2 {
			continue
		}
		limit := core.ParseAmount(cols[1])
		if i == 0 && limit.IsZero() && !looksNumeric(cols[1]) {
			continue // header row
		}
		b := core.Budget{
			CategoryName: cols[0],
			MonthlyLimit: limit,
			IsActive:     true,
		}
		if len(cols) > 2 {
			b.AlertThreshold, _ = strconv.Atoi(cols[2])
		}
		if len(cols) > 3 {
			b.IsActive = parseBool(cols[3])
		}
		if b.Validate() != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return err == nil
}
