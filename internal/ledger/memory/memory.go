// Package memory provides an in-memory ledger source for local development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	txs      []core.Transaction
	accounts []core.Account
	budgets  []core.Budget
}

func New(accounts []core.Account, budgets []core.Budget) *Store {
	return &Store{accounts: accounts, budgets: budgets}
}

func (s *Store) Transactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) Accounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) Budgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

// Append stores validated transactions, assigning sequential IDs.
func (s *Store) Append(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return inserted, err
		}
		s.nextID++
		t.ID = s.nextID
		s.txs = append(s.txs, t)
		inserted++
	}
	return inserted, nil
}

// UpdateCategory recategorizes a stored transaction.
func (s *Store) UpdateCategory(_ context.Context, id int64, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs[i].Category = category
			return nil
		}
	}
	return fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
}
