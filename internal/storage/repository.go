// Package storage persists the ledger in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

type SQLiteRepository struct {
	db *sql.DB
}

// Ensure interface conformance
var (
	_ ledger.Source          = (*SQLiteRepository)(nil)
	_ ledger.Appender        = (*SQLiteRepository)(nil)
	_ ledger.CategoryUpdater = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Transactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, date, description, amount, category, is_verified, import_batch_id, created_at
		FROM transactions
		ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, amount string
		if err := rows.Scan(&t.ID, &t.AccountID, &date, &t.Description, &amount,
			&t.Category, &t.IsVerified, &t.ImportBatchID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: bad date %q: %w", t.ID, date, err)
		}
		t.Amount = core.ParseAmount(amount)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Accounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, account_type, initial_balance, is_active
		FROM accounts
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		var typ, balance string
		if err := rows.Scan(&a.ID, &a.Name, &typ, &balance, &a.IsActive); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.AccountType = core.AccountType(typ)
		a.InitialBalance = core.ParseAmount(balance)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Budgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_name, monthly_limit, alert_threshold, is_active
		FROM budgets
		ORDER BY category_name`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var limit string
		if err := rows.Scan(&b.CategoryName, &limit, &b.AlertThreshold, &b.IsActive); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.MonthlyLimit = core.ParseAmount(limit)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Append inserts transactions in one batch. Transactions without an import
// batch ID share a freshly generated one.
func (r *SQLiteRepository) Append(ctx context.Context, txs []core.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	batchID := uuid.NewString()

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (account_id, date, description, amount, category, is_verified, import_batch_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
		if strings.TrimSpace(t.ImportBatchID) == "" {
			t.ImportBatchID = batchID
		}
		if _, err := stmt.ExecContext(ctx, t.AccountID, t.Date.ISO(), t.Description,
			t.Amount.StringFixed(2), t.Category, t.IsVerified, t.ImportBatchID); err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
		inserted++
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite",
		"inserted", inserted, "batch_id", batchID)
	return inserted, nil
}

// UpdateCategory recategorizes one transaction. The only mutable field.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, category string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category = ? WHERE id = ?`, category, id)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ledger.ErrNotFound)
	}
	return nil
}

// UpsertAccount creates or updates an account by name.
func (r *SQLiteRepository) UpsertAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (name, account_type, initial_balance, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			account_type = excluded.account_type,
			initial_balance = excluded.initial_balance,
			is_active = excluded.is_active`,
		a.Name, string(a.AccountType), a.InitialBalance.StringFixed(2), a.IsActive)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// UpsertBudget creates or updates a budget by category name.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (category_name, monthly_limit, alert_threshold, is_active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category_name) DO UPDATE SET
			monthly_limit = excluded.monthly_limit,
			alert_threshold = excluded.alert_threshold,
			is_active = excluded.is_active`,
		b.CategoryName, b.MonthlyLimit.StringFixed(2), b.AlertThreshold, b.IsActive)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}
