package google

import (
	"testing"
)

func row(vals ...any) []any { return vals }

func TestParseTransactionRows(t *testing.T) {
	rows := [][]any{
		row("ID", "Account", "Date", "Description", "Amount"), // header
		row("1", "2", "2026-01-05", "FORTIS BC", "-85.20", "Gas", "true", "batch-1"),
		row("2", "2", "not-a-date", "bad row", "-10.00"),
		row("3", "2", "2026-01-06", "refund", "12,50"),
	}

	txs, skipped := parseTransactionRows(rows)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if skipped != 1 {
		t.Fatalf("expected 1 skipped row, got %d", skipped)
	}

	first := txs[0]
	if first.ID != 1 || first.AccountID != 2 {
		t.Fatalf("unexpected IDs: %+v", first)
	}
	if first.Category != "Gas" || !first.IsVerified || first.ImportBatchID != "batch-1" {
		t.Fatalf("unexpected fields: %+v", first)
	}
	if first.Amount.StringFixed(2) != "-85.20" {
		t.Fatalf("unexpected amount: %s", first.Amount)
	}
	// Decimal comma is tolerated.
	if txs[1].Amount.StringFixed(2) != "12.50" {
		t.Fatalf("comma amount: %s", txs[1].Amount)
	}
}

func TestParseTransactionRowsBadAmountFallsBackToZero(t *testing.T) {
	rows := [][]any{
		row("1", "2", "2026-01-05", "garbage amount", "n/a"),
	}
	txs, skipped := parseTransactionRows(rows)
	if len(txs) != 1 || skipped != 0 {
		t.Fatalf("expected lenient parse, got %d txs %d skipped", len(txs), skipped)
	}
	if !txs[0].Amount.IsZero() {
		t.Fatalf("expected zero amount, got %s", txs[0].Amount)
	}
}

func TestParseAccountRows(t *testing.T) {
	rows := [][]any{
		row("ID", "Name", "Type"),
		row("1", "Chequing", "checking", "1500.00", "true"),
		row("2", "Visa", "credit_card", "0", "false"),
		row("3", "", "checking"), // invalid, dropped
		row("4", "Weird", "timeshare"),
	}

	accounts := parseAccountRows(rows)
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].InitialBalance.StringFixed(2) != "1500.00" {
		t.Fatalf("initial balance: %s", accounts[0].InitialBalance)
	}
	if accounts[1].IsActive {
		t.Fatal("expected inactive account")
	}
}

func TestParseBudgetRows(t *testing.T) {
	rows := [][]any{
		row("Category", "Limit", "Threshold", "Active"),
		row("Groceries", "500.00", "80", "true"),
		row("Dining", "150", "", "false"),
	}

	budgets := parseBudgetRows(rows)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	if budgets[0].CategoryName != "Groceries" || budgets[0].AlertThreshold != 80 {
		t.Fatalf("unexpected budget: %+v", budgets[0])
	}
	if budgets[1].IsActive {
		t.Fatal("expected inactive budget")
	}
}
