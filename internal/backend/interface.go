// Package backend selects and constructs the ledger data source from
// configuration.
package backend

import (
	"context"

	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result holds the constructed ledger backend. Appender is nil when the
// backend cannot accept imported transactions.
type Result struct {
	Source   ledger.Source
	Appender ledger.Appender
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Type names a ledger backend.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
