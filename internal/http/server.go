// Package http serves the analytics reports as a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/thomascrelier/Budgetapp-new/internal/cache"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
	"github.com/thomascrelier/Budgetapp-new/internal/log"
	"github.com/thomascrelier/Budgetapp-new/internal/services"
)

// SyncPublisher asks the import worker to refresh the local ledger.
type SyncPublisher interface {
	PublishSyncRequest(ctx context.Context, reason string) error
}

type Server struct {
	http.Server
	reports     *services.ReportService
	publisher   SyncPublisher
	updater     ledger.CategoryUpdater
	rateLimiter *rateLimiter
	now         func() time.Time
	logger      *log.Logger
	structured  *log.StructuredLogger

	// Rendered-report cache: key is path?query, value the JSON body.
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. A nil publisher disables the manual sync endpoint, a nil
// updater the recategorize endpoint. A nil clock defaults to time.Now.
func NewServer(addr string, reports *services.ReportService, publisher SyncPublisher, updater ledger.CategoryUpdater, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	mux := http.NewServeMux()
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		reports:      reports,
		publisher:    publisher,
		updater:      updater,
		rateLimiter:  newRateLimiter(),
		now:          now,
		logger:       logger,
		structured:   log.NewStructuredLogger(logger),
		reportCache:  cache.NewLRUCache[[]byte](200, 2*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/api/v1/analytics/monthly", s.withMiddleware(s.cached(s.handleMonthlyBreakdown)))
	mux.HandleFunc("/api/v1/analytics/cashflow", s.withMiddleware(s.cached(s.handleCashFlow)))
	mux.HandleFunc("/api/v1/analytics/risks", s.withMiddleware(s.cached(s.handleSpendingRisks)))
	mux.HandleFunc("/api/v1/analytics/budgets", s.withMiddleware(s.cached(s.handleBudgetStatus)))
	mux.HandleFunc("/api/v1/analytics/tax", s.withMiddleware(s.cached(s.handleTaxSummary)))
	mux.HandleFunc("/api/v1/analytics/utilities", s.withMiddleware(s.cached(s.handleUtilityTracker)))
	mux.HandleFunc("/api/v1/analytics/dashboard", s.withMiddleware(s.cached(s.handleDashboard)))
	mux.HandleFunc("/api/v1/analytics/balance-history", s.withMiddleware(s.cached(s.handleBalanceHistory)))
	mux.HandleFunc("/api/v1/sync", s.withMiddleware(s.handleSyncRequest))
	mux.HandleFunc("PUT /api/v1/transactions/{id}/category", s.withMiddleware(s.handleUpdateCategory))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, a request ID and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = log.WithLogger(ctx, s.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, clientIP)

		if !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// cached serves GET responses from the report cache, keyed by path and
// query. Only successful responses are cached.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		key := r.URL.Path + "?" + r.URL.RawQuery
		if body, ok := s.reportCache.Get(key); ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}}
		next(rec, r)
		if rec.statusCode == http.StatusOK {
			s.reportCache.Set(key, rec.body)
		}
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// recordingWriter additionally captures the body for the report cache.
type recordingWriter struct {
	responseWriter
	body []byte
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	rw.body = append(rw.body, p...)
	return rw.responseWriter.Write(p)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Ready when a snapshot can be produced.
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := s.reports.Dashboard(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
		writeError(w, http.StatusServiceUnavailable, "data source unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
