package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Load reads one consistent Snapshot from the source, fetching the three
// datasets concurrently.
func Load(ctx context.Context, src Source) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := src.Transactions(gctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		accounts, err := src.Accounts(gctx)
		if err != nil {
			return fmt.Errorf("load accounts: %w", err)
		}
		snap.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		budgets, err := src.Budgets(gctx)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		snap.Budgets = budgets
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// SnapshotCache memoizes one Snapshot for a TTL. The clock is injected so
// expiry is testable without sleeping.
type SnapshotCache struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	snap      Snapshot
	fetchedAt time.Time
	valid     bool
}

// NewSnapshotCache wraps src with TTL-based snapshot memoization. A nil
// clock defaults to time.Now.
func NewSnapshotCache(src Source, ttl time.Duration, now func() time.Time) *SnapshotCache {
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{src: src, ttl: ttl, now: now}
}

// Snapshot returns the cached snapshot, reloading from the source when the
// entry is missing, expired or invalidated.
func (c *SnapshotCache) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.snap, nil
	}

	snap, err := Load(ctx, c.src)
	if err != nil {
		return Snapshot{}, err
	}
	c.snap = snap
	c.fetchedAt = c.now()
	c.valid = true
	return snap, nil
}

// Invalidate drops the cached snapshot. The next read hits the source.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}
