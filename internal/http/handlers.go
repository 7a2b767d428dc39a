package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/thomascrelier/Budgetapp-new/internal/core"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
	"github.com/thomascrelier/Budgetapp-new/internal/log"
)

// handleMonthlyBreakdown serves the single-month report. The month
// parameter is required and must be YYYY-MM.
func (s *Server) handleMonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = s.now().Format("2006-01")
	}

	report, err := s.reports.MonthlyBreakdown(r.Context(), month, queryAccountIDs(r))
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly breakdown failed",
			log.FieldError, err, log.FieldMonth, month)
		writeError(w, http.StatusInternalServerError, "failed to build monthly breakdown")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 6, 1, 36)

	points, err := s.reports.CashFlow(r.Context(), months, queryAccountIDs(r))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Cash flow failed",
			log.FieldError, err, "months", months)
		writeError(w, http.StatusInternalServerError, "failed to build cash flow")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleSpendingRisks(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.SpendingRisks(r.Context(), queryAccountIDs(r))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Spending risks failed",
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to detect spending risks")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = s.now().Format("2006-01")
	}

	report, err := s.reports.BudgetStatus(r.Context(), month, queryAccountIDs(r))
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Budget status failed",
			log.FieldError, err, log.FieldMonth, month)
		writeError(w, http.StatusInternalServerError, "failed to evaluate budgets")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTaxSummary(w http.ResponseWriter, r *http.Request) {
	year := queryYear(r, s.now())

	report, err := s.reports.TaxSummary(r.Context(), year)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Tax summary failed",
			log.FieldError, err, log.FieldYear, year)
		writeError(w, http.StatusInternalServerError, "failed to build tax summary")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUtilityTracker(w http.ResponseWriter, r *http.Request) {
	year := queryYear(r, s.now())

	records, err := s.reports.UtilityTracker(r.Context(), year)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Utility tracker failed",
			log.FieldError, err, log.FieldYear, year)
		writeError(w, http.StatusInternalServerError, "failed to reconcile utilities")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.reports.Dashboard(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard failed",
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 12, 1, 36)

	points, err := s.reports.BalanceHistory(r.Context(), months)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Balance history failed",
			log.FieldError, err, "months", months)
		writeError(w, http.StatusInternalServerError, "failed to build balance history")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// handleSyncRequest queues a spreadsheet import.
func (s *Server) handleSyncRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "sync queue not configured")
		return
	}
	if err := s.publisher.PublishSyncRequest(r.Context(), "manual"); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Sync request failed",
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to queue sync")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleUpdateCategory recategorizes a single transaction and drops the
// rendered-report cache, since every report depends on categories.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if s.updater == nil {
		writeError(w, http.StatusServiceUnavailable, "category updates not supported by this backend")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var body struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category := strings.TrimSpace(body.Category)
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	if err := s.updater.UpdateCategory(r.Context(), id, category); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Category update failed",
			log.FieldError, err, "transaction_id", id)
		writeError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	s.reportCache.Purge()
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
