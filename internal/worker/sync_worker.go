// Package worker imports spreadsheet transactions into SQLite.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thomascrelier/Budgetapp-new/internal/amqp"
	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

// SyncWorker pulls the spreadsheet ledger and appends transactions SQLite
// has not seen yet. Rows are matched by a composite key rather than IDs,
// because spreadsheet rows have none that survive editing.
type SyncWorker struct {
	remote      ledger.Source
	local       ledger.Source
	appender    ledger.Appender
	invalidator ledger.Invalidator
}

func NewSyncWorker(remote, local ledger.Source, appender ledger.Appender, invalidator ledger.Invalidator) *SyncWorker {
	return &SyncWorker{
		remote:      remote,
		local:       local,
		appender:    appender,
		invalidator: invalidator,
	}
}

// Upserter refreshes reference data. Stores that cannot are skipped.
type Upserter interface {
	UpsertAccount(ctx context.Context, a core.Account) error
	UpsertBudget(ctx context.Context, b core.Budget) error
}

// HandleSyncRequest processes one queued sync request.
func (w *SyncWorker) HandleSyncRequest(ctx context.Context, msg *amqp.SyncRequestMessage) error {
	slog.InfoContext(ctx, "Processing sync request", "reason", msg.Reason)
	return w.RunOnce(ctx)
}

// RunOnce refreshes accounts and budgets, then imports every remote
// transaction not already present locally.
func (w *SyncWorker) RunOnce(ctx context.Context) error {
	if err := w.syncReference(ctx); err != nil {
		return err
	}

	remote, err := w.remote.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("read remote transactions: %w", err)
	}
	local, err := w.local.Transactions(ctx)
	if err != nil {
		return fmt.Errorf("read local transactions: %w", err)
	}

	seen := make(map[string]struct{}, len(local))
	for _, t := range local {
		seen[dedupKey(t)] = struct{}{}
	}

	var fresh []core.Transaction
	for _, t := range remote {
		key := dedupKey(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		t.ID = 0 // local storage assigns its own
		fresh = append(fresh, t)
	}

	if len(fresh) == 0 {
		slog.InfoContext(ctx, "Sync found nothing new",
			"remote", len(remote), "local", len(local))
		return nil
	}

	inserted, err := w.appender.Append(ctx, fresh)
	if err != nil {
		return fmt.Errorf("append imported transactions: %w", err)
	}
	if w.invalidator != nil {
		w.invalidator.Invalidate()
	}

	slog.InfoContext(ctx, "Sync imported transactions",
		"imported", inserted, "remote", len(remote))
	return nil
}

// syncReference mirrors remote accounts and budgets into the local store
// when it supports upserts.
func (w *SyncWorker) syncReference(ctx context.Context) error {
	up, ok := w.appender.(Upserter)
	if !ok {
		return nil
	}

	accounts, err := w.remote.Accounts(ctx)
	if err != nil {
		return fmt.Errorf("read remote accounts: %w", err)
	}
	for _, a := range accounts {
		if err := up.UpsertAccount(ctx, a); err != nil {
			return fmt.Errorf("upsert account %q: %w", a.Name, err)
		}
	}

	budgets, err := w.remote.Budgets(ctx)
	if err != nil {
		return fmt.Errorf("read remote budgets: %w", err)
	}
	for _, b := range budgets {
		if err := up.UpsertBudget(ctx, b); err != nil {
			return fmt.Errorf("upsert budget %q: %w", b.CategoryName, err)
		}
	}

	if len(accounts) > 0 || len(budgets) > 0 {
		slog.InfoContext(ctx, "Synced reference data",
			"accounts", len(accounts), "budgets", len(budgets))
	}
	return nil
}

// dedupKey identifies a transaction across stores: date, normalized
// description, amount and account.
func dedupKey(t core.Transaction) string {
	desc := strings.ToLower(strings.Join(strings.Fields(t.Description), " "))
	return fmt.Sprintf("%s|%s|%s|%d", t.Date.ISO(), desc, t.Amount.StringFixed(2), t.AccountID)
}
