// Package ledger defines the ports between the analytics engine and the
// places transaction data lives (SQLite, Google Sheets, memory).
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
)

// ErrNotFound reports a write against a transaction that does not exist.
var ErrNotFound = errors.New("transaction not found")

// Ports for outbound adapters.
type (
	// Source reads the full financial dataset. Implementations return
	// copies; callers may mutate the slices freely.
	Source interface {
		Transactions(ctx context.Context) ([]core.Transaction, error)
		Accounts(ctx context.Context) ([]core.Account, error)
		Budgets(ctx context.Context) ([]core.Budget, error)
	}

	// Appender persists new transactions, typically from an import batch.
	Appender interface {
		Append(ctx context.Context, txs []core.Transaction) (inserted int, err error)
	}

	// CategoryUpdater recategorizes one stored transaction. Category is
	// the only field that changes after import.
	CategoryUpdater interface {
		UpdateCategory(ctx context.Context, id int64, category string) error
	}

	// Invalidator drops any cached view of the dataset after a write.
	Invalidator interface {
		Invalidate()
	}
)

// Snapshot is one consistent read of the dataset, the unit the report
// services compute from.
type Snapshot struct {
	Transactions []core.Transaction
	Accounts     []core.Account
	Budgets      []core.Budget
}

// AccountByName finds an account by case-insensitive name match.
func (s Snapshot) AccountByName(name string) (core.Account, bool) {
	for _, a := range s.Accounts {
		if strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(name)) {
			return a, true
		}
	}
	return core.Account{}, false
}
