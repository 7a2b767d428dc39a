package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/thomascrelier/Budgetapp-new/internal/amqp"
	"github.com/thomascrelier/Budgetapp-new/internal/analytics"
	"github.com/thomascrelier/Budgetapp-new/internal/backend"
	"github.com/thomascrelier/Budgetapp-new/internal/config"
	apphttp "github.com/thomascrelier/Budgetapp-new/internal/http"
	"github.com/thomascrelier/Budgetapp-new/internal/ledger"
	"github.com/thomascrelier/Budgetapp-new/internal/log"
	"github.com/thomascrelier/Budgetapp-new/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}()
	}

	snapshots := ledger.NewSnapshotCache(result.Source, cfg.SnapshotTTL, nil)
	reports := services.NewReportService(snapshots, reportConfig(cfg), nil)

	// Category edits go straight to the backend when it supports them
	// (the Sheets backend does not), dropping the cached snapshot after.
	var updater ledger.CategoryUpdater
	if cu, ok := result.Source.(ledger.CategoryUpdater); ok {
		updater = &recategorizer{store: cu, cache: snapshots}
	}

	// AMQP is optional: without it the manual sync endpoint returns 503.
	var publisher apphttp.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, reports, publisher, updater, nil)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting budgetapp server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// recategorizer applies a category edit and invalidates the snapshot
// cache so the next report sees it.
type recategorizer struct {
	store ledger.CategoryUpdater
	cache *ledger.SnapshotCache
}

func (r *recategorizer) UpdateCategory(ctx context.Context, id int64, category string) error {
	if err := r.store.UpdateCategory(ctx, id, category); err != nil {
		return err
	}
	r.cache.Invalidate()
	return nil
}

// reportConfig overlays the configured business constants on the report
// defaults.
func reportConfig(cfg *config.Config) services.ReportConfig {
	rc := services.DefaultReportConfig()
	rc.RentalAccountName = cfg.RentalAccountName
	rc.MoneyMovement = cfg.MoneyMovement
	rc.Risk.NoiseFloor = cfg.RiskNoiseFloor
	rc.Risk.MaxResults = cfg.RiskMaxResults
	// Income categories stay invisible to the detector alongside the
	// configured money-movement set.
	rc.Risk.Exclude = analytics.ExclusionSet(append([]string{"Income", "Rental Income"}, cfg.MoneyMovement...)...)

	for i := range rc.Utility.Payers {
		p := &rc.Utility.Payers[i]
		if p.BaseRent.IsPositive() {
			p.BaseRent = cfg.UtilityBaseRent
		}
		if p.MaxContribution.IsPositive() {
			p.MaxContribution = cfg.UtilityContributionCap
		}
	}
	return rc
}
