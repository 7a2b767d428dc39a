// Package services orchestrates snapshot loading and the analytics engine.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/thomascrelier/Budgetapp-new/internal/analytics"
	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
)

// SnapshotProvider yields a consistent dataset read, typically the TTL
// snapshot cache.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

// ReportConfig carries the business constants the reports are computed
// with. Defaults preserve the household's historical arrangement.
type ReportConfig struct {
	RentalAccountName string
	MoneyMovement     []string
	Risk              analytics.RiskConfig
	Utility           analytics.UtilityConfig
	TaxGroups         []analytics.GroupDef
}

func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		RentalAccountName: "Rental Account",
		MoneyMovement:     analytics.DefaultMoneyMovementCategories,
		Risk:              analytics.DefaultRiskConfig(),
		Utility:           analytics.DefaultUtilityConfig(),
		TaxGroups:         analytics.DefaultT776Groups(),
	}
}

// ReportService computes every report from one snapshot per request.
type ReportService struct {
	snapshots SnapshotProvider
	cfg       ReportConfig
	now       func() time.Time
}

// NewReportService builds a report service. A nil clock defaults to
// time.Now.
func NewReportService(snapshots SnapshotProvider, cfg ReportConfig, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{snapshots: snapshots, cfg: cfg, now: now}
}

func (s *ReportService) exclusions() map[string]struct{} {
	return analytics.ExclusionSet(s.cfg.MoneyMovement...)
}

// MonthlyBreakdown builds the single-month report, optionally restricted to
// a set of account IDs.
func (s *ReportService) MonthlyBreakdown(ctx context.Context, month string, accountIDs []int64) (analytics.MonthlyBreakdown, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return analytics.MonthlyBreakdown{}, err
	}
	txs := filterByAccounts(snap.Transactions, accountIDs)
	return analytics.BuildMonthlyBreakdown(txs, month, s.now(), s.exclusions())
}

// CashFlow builds the month-over-month income/expense series ending at the
// current month.
func (s *ReportService) CashFlow(ctx context.Context, months int, accountIDs []int64) ([]analytics.CashFlowPoint, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	txs := filterByAccounts(snap.Transactions, accountIDs)
	return analytics.BuildCashFlow(txs, s.now(), months, s.exclusions()), nil
}

// SpendingRisks runs the deviation detector, optionally restricted to a set
// of account IDs.
func (s *ReportService) SpendingRisks(ctx context.Context, accountIDs []int64) (analytics.RiskReport, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return analytics.RiskReport{}, err
	}
	txs := filterByAccounts(snap.Transactions, accountIDs)
	return analytics.DetectSpendingRisks(txs, s.now(), s.cfg.Risk), nil
}

// BudgetStatus evaluates every active budget against one month's spend.
func (s *ReportService) BudgetStatus(ctx context.Context, month string, accountIDs []int64) (analytics.BudgetReport, error) {
	if _, _, err := core.ParseMonthKey(month); err != nil {
		return analytics.BudgetReport{}, err
	}
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return analytics.BudgetReport{}, err
	}
	txs := filterByAccounts(snap.Transactions, accountIDs)
	return analytics.EvaluateBudgets(snap.Budgets, txs, month), nil
}

// TaxSummary builds the rental tax report for one year from the rental
// account's transactions. A missing rental account yields an empty report
// rather than an error.
func (s *ReportService) TaxSummary(ctx context.Context, year int) (analytics.TaxSummary, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return analytics.TaxSummary{}, err
	}
	rental, ok := snap.AccountByName(s.cfg.RentalAccountName)
	if !ok {
		slog.WarnContext(ctx, "rental account not found, returning empty tax summary",
			"account", s.cfg.RentalAccountName)
		return analytics.BuildTaxSummary(nil, year, s.cfg.TaxGroups), nil
	}
	txs := filterByAccounts(snap.Transactions, []int64{rental.ID})
	return analytics.BuildTaxSummary(txs, year, s.cfg.TaxGroups), nil
}

// UtilityTracker reconciles utility bills against tenant contributions for
// one calendar year, over the rental account's history. A missing rental
// account yields an empty ledger rather than an error.
func (s *ReportService) UtilityTracker(ctx context.Context, year int) ([]analytics.UtilityMonthRecord, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rental, ok := snap.AccountByName(s.cfg.RentalAccountName)
	if !ok {
		slog.WarnContext(ctx, "rental account not found, returning empty utility ledger",
			"account", s.cfg.RentalAccountName)
		return []analytics.UtilityMonthRecord{}, nil
	}
	txs := filterByAccounts(snap.Transactions, []int64{rental.ID})
	return analytics.ReconcileUtilities(txs, year, s.cfg.Utility), nil
}

// Dashboard is the landing-page summary.
type Dashboard struct {
	Month        string  `json:"month"`
	Income       float64 `json:"income"`
	Expenses     float64 `json:"expenses"`
	Net          float64 `json:"net"`
	TotalBalance float64 `json:"total_balance"`
	ActiveRisks  int     `json:"active_risks"`
	BudgetsOver  int     `json:"budgets_over"`
}

// Dashboard combines the current month's totals, the derived balance across
// active accounts, and headline counts from the risk and budget reports.
func (s *ReportService) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	now := s.now()
	month := now.Format("2006-01")

	breakdown, err := analytics.BuildMonthlyBreakdown(snap.Transactions, month, now, s.exclusions())
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard breakdown: %w", err)
	}

	balance := decimal.Zero
	for _, a := range snap.Accounts {
		if !a.IsActive {
			continue
		}
		balance = balance.Add(a.Balance(snap.Transactions))
	}

	risks := analytics.DetectSpendingRisks(snap.Transactions, now, s.cfg.Risk)
	budgets := analytics.EvaluateBudgets(snap.Budgets, snap.Transactions, month)
	over := 0
	for _, b := range budgets.Budgets {
		if b.Status == analytics.StatusExceeded {
			over++
		}
	}

	return Dashboard{
		Month:        month,
		Income:       breakdown.Income,
		Expenses:     breakdown.Expenses,
		Net:          breakdown.Net,
		TotalBalance: core.Money2(balance),
		ActiveRisks:  len(risks.Risks),
		BudgetsOver:  over,
	}, nil
}

// BalancePoint is one month-end total balance across active accounts.
type BalancePoint struct {
	Month   string  `json:"month"`
	Balance float64 `json:"balance"`
}

// BalanceHistory derives the end-of-month total balance for n months ending
// at the current month. Balances are always derived from initial balances
// plus transaction history, never stored.
func (s *ReportService) BalanceHistory(ctx context.Context, months int) ([]BalancePoint, error) {
	snap, err := s.snapshots.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	keys := core.MonthsEnding(s.now(), months)
	if keys == nil {
		return []BalancePoint{}, nil
	}

	initial := decimal.Zero
	active := make(map[int64]struct{})
	for _, a := range snap.Accounts {
		if !a.IsActive {
			continue
		}
		initial = initial.Add(a.InitialBalance)
		active[a.ID] = struct{}{}
	}

	// Signed amounts per month, restricted to active accounts. Months before
	// the window fold into the opening balance.
	perMonth := make(map[string]decimal.Decimal)
	opening := initial
	firstKey := keys[0]
	for _, t := range snap.Transactions {
		if _, ok := active[t.AccountID]; !ok {
			continue
		}
		m := t.Date.MonthKey()
		if m < firstKey {
			opening = opening.Add(t.Amount)
			continue
		}
		perMonth[m] = perMonth[m].Add(t.Amount)
	}

	out := make([]BalancePoint, 0, len(keys))
	running := opening
	for _, m := range keys {
		running = running.Add(perMonth[m])
		out = append(out, BalancePoint{Month: m, Balance: core.Money2(running)})
	}
	return out, nil
}

// filterByAccounts restricts transactions to the given account IDs. An
// empty filter keeps everything.
func filterByAccounts(txs []core.Transaction, ids []int64) []core.Transaction {
	if len(ids) == 0 {
		return txs
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if _, ok := want[t.AccountID]; ok {
			out = append(out, t)
		}
	}
	return out
}
