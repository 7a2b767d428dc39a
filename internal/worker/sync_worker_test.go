package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger/memory"
)

type invalidateSpy struct{ calls int }

func (s *invalidateSpy) Invalidate() { s.calls++ }

func remoteTx(id int64, date, desc, amount string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: id, AccountID: 1, Date: d, Description: desc, Amount: amt}
}

func TestRunOnceImportsOnlyNewRows(t *testing.T) {
	ctx := context.Background()
	remote := memory.New(nil, nil)
	local := memory.New(nil, nil)
	spy := &invalidateSpy{}

	if _, err := remote.Append(ctx, []core.Transaction{
		remoteTx(0, "2026-01-05", "FORTIS BC", "-85.20"),
		remoteTx(0, "2026-01-06", "salary", "3000.00"),
	}); err != nil {
		t.Fatalf("seed remote: %v", err)
	}
	// One row already imported.
	if _, err := local.Append(ctx, []core.Transaction{
		remoteTx(0, "2026-01-05", "FORTIS BC", "-85.20"),
	}); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	w := NewSyncWorker(remote, local, local, spy)
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}

	txs, _ := local.Transactions(ctx)
	if len(txs) != 2 {
		t.Fatalf("expected 2 local transactions, got %d", len(txs))
	}
	if spy.calls != 1 {
		t.Fatalf("expected 1 cache invalidation, got %d", spy.calls)
	}
}

func TestRunOnceNoopSkipsInvalidation(t *testing.T) {
	ctx := context.Background()
	remote := memory.New(nil, nil)
	local := memory.New(nil, nil)
	spy := &invalidateSpy{}

	w := NewSyncWorker(remote, local, local, spy)
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if spy.calls != 0 {
		t.Fatal("no import should mean no invalidation")
	}
}

func TestDedupKeyNormalizesDescription(t *testing.T) {
	a := remoteTx(1, "2026-01-05", "  FORTIS   BC ", "-85.20")
	b := remoteTx(2, "2026-01-05", "fortis bc", "-85.2")
	if dedupKey(a) != dedupKey(b) {
		t.Fatalf("keys differ: %q vs %q", dedupKey(a), dedupKey(b))
	}

	c := remoteTx(3, "2026-01-05", "fortis bc", "-85.21")
	if dedupKey(a) == dedupKey(c) {
		t.Fatal("different amounts must not collide")
	}
}
