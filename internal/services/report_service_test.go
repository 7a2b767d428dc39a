package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

type stubProvider struct {
	snap ledger.Snapshot
	err  error
}

func (s *stubProvider) Snapshot(_ context.Context) (ledger.Snapshot, error) {
	return s.snap, s.err
}

var serviceNow = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testService(snap ledger.Snapshot) *ReportService {
	provider := &stubProvider{snap: snap}
	return NewReportService(provider, DefaultReportConfig(), func() time.Time { return serviceNow })
}

func baseSnapshot() ledger.Snapshot {
	return ledger.Snapshot{
		Accounts: []core.Account{
			{ID: 1, Name: "Chequing", AccountType: core.Checking, InitialBalance: amt("1000"), IsActive: true},
			{ID: 2, Name: "Rental Account", AccountType: core.Checking, IsActive: true},
			{ID: 3, Name: "Old Savings", AccountType: core.Savings, InitialBalance: amt("9999"), IsActive: false},
		},
		Transactions: []core.Transaction{
			{ID: 1, AccountID: 1, Date: core.NewDate(2026, 1, 10), Description: "pay", Amount: amt("2500"), Category: "Income"},
			{ID: 2, AccountID: 1, Date: core.NewDate(2026, 2, 5), Description: "groceries", Amount: amt("-180"), Category: "Groceries"},
			{ID: 3, AccountID: 2, Date: core.NewDate(2026, 2, 7), Description: "hydro", Amount: amt("-120"), Category: "Electricity"},
			{ID: 4, AccountID: 3, Date: core.NewDate(2026, 2, 8), Description: "ghost", Amount: amt("-50"), Category: "Groceries"},
		},
	}
}

func TestMonthlyBreakdownAccountFilter(t *testing.T) {
	svc := testService(baseSnapshot())

	report, err := svc.MonthlyBreakdown(context.Background(), "2026-02", []int64{1})
	if err != nil {
		t.Fatalf("MonthlyBreakdown: %v", err)
	}
	if report.Expenses != 180 {
		t.Errorf("Expenses = %v, want 180 (account filter)", report.Expenses)
	}

	report, err = svc.MonthlyBreakdown(context.Background(), "2026-02", nil)
	if err != nil {
		t.Fatalf("MonthlyBreakdown: %v", err)
	}
	if report.Expenses != 350 {
		t.Errorf("Expenses = %v, want 350 (all accounts)", report.Expenses)
	}
}

func TestBudgetStatusRejectsBadMonth(t *testing.T) {
	svc := testService(baseSnapshot())

	_, err := svc.BudgetStatus(context.Background(), "2026-00", nil)
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
}

func TestSnapshotErrorPropagates(t *testing.T) {
	provider := &stubProvider{err: errors.New("source down")}
	svc := NewReportService(provider, DefaultReportConfig(), func() time.Time { return serviceNow })

	if _, err := svc.MonthlyBreakdown(context.Background(), "2026-02", nil); err == nil {
		t.Error("MonthlyBreakdown should propagate snapshot error")
	}
	if _, err := svc.Dashboard(context.Background()); err == nil {
		t.Error("Dashboard should propagate snapshot error")
	}
	if _, err := svc.TaxSummary(context.Background(), 2026); err == nil {
		t.Error("TaxSummary should propagate snapshot error")
	}
}

func TestTaxSummaryUsesOnlyRentalAccount(t *testing.T) {
	snap := baseSnapshot()
	snap.Transactions = append(snap.Transactions,
		core.Transaction{ID: 5, AccountID: 2, Date: core.NewDate(2026, 1, 15), Description: "rent", Amount: amt("2200"), Category: "Rental Income"},
	)
	svc := testService(snap)

	report, err := svc.TaxSummary(context.Background(), 2026)
	if err != nil {
		t.Fatalf("TaxSummary: %v", err)
	}
	if report.AnnualSummary.Income != 2200 {
		t.Errorf("Income = %v, want 2200", report.AnnualSummary.Income)
	}
	// Account 1's groceries must not leak into the rental report.
	if report.AnnualSummary.Expenses != 120 {
		t.Errorf("Expenses = %v, want 120", report.AnnualSummary.Expenses)
	}
}

func TestTaxSummaryMissingRentalAccount(t *testing.T) {
	snap := baseSnapshot()
	snap.Accounts = snap.Accounts[:1]
	svc := testService(snap)

	report, err := svc.TaxSummary(context.Background(), 2026)
	if err != nil {
		t.Fatalf("TaxSummary: %v", err)
	}
	if report.AnnualSummary.Income != 0 || report.AnnualSummary.Expenses != 0 {
		t.Errorf("expected empty report, got %+v", report.AnnualSummary)
	}
}

func TestUtilityTrackerUsesRentalAccount(t *testing.T) {
	snap := baseSnapshot()
	svc := testService(snap)

	records, err := svc.UtilityTracker(context.Background(), 2026)
	if err != nil {
		t.Fatalf("UtilityTracker: %v", err)
	}
	if len(records) != 1 || records[0].Electricity != 120 || !records[0].Pending {
		t.Fatalf("unexpected records: %+v", records)
	}

	// Without the rental account the ledger is empty, not an error.
	snap.Accounts = snap.Accounts[:1]
	svc = testService(snap)
	records, err = svc.UtilityTracker(context.Background(), 2026)
	if err != nil {
		t.Fatalf("UtilityTracker: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty ledger, got %+v", records)
	}
}

func TestDashboard(t *testing.T) {
	svc := testService(baseSnapshot())

	dash, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Month != "2026-02" {
		t.Errorf("Month = %s, want 2026-02", dash.Month)
	}
	if dash.Expenses != 350 {
		t.Errorf("Expenses = %v, want 350 (inactive accounts still counted)", dash.Expenses)
	}
	// 1000 + 2500 - 180 on account 1, -120 on account 2; account 3 inactive.
	if dash.TotalBalance != 3200 {
		t.Errorf("TotalBalance = %v, want 3200", dash.TotalBalance)
	}
}

func TestBalanceHistory(t *testing.T) {
	svc := testService(baseSnapshot())

	points, err := svc.BalanceHistory(context.Background(), 2)
	if err != nil {
		t.Fatalf("BalanceHistory: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if points[0].Month != "2026-01" || points[0].Balance != 3500 {
		t.Errorf("points[0] = %+v, want 2026-01 / 3500", points[0])
	}
	if points[1].Month != "2026-02" || points[1].Balance != 3200 {
		t.Errorf("points[1] = %+v, want 2026-02 / 3200", points[1])
	}
}

func TestBalanceHistoryFoldsOlderMonths(t *testing.T) {
	svc := testService(baseSnapshot())

	points, err := svc.BalanceHistory(context.Background(), 1)
	if err != nil {
		t.Fatalf("BalanceHistory: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("len(points) = %d, want 1", len(points))
	}
	// January's income folds into the opening balance.
	if points[0].Month != "2026-02" || points[0].Balance != 3200 {
		t.Errorf("points[0] = %+v, want 2026-02 / 3200", points[0])
	}
}
