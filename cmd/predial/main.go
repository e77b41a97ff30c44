package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"predial/internal/backend"
	"predial/internal/config"
	"predial/internal/export/sheets"
	apphttp "predial/internal/http"
	"predial/internal/log"
	"predial/internal/report"
	"predial/internal/services"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		Handler:   log.NewHandler(cfg.LogFormat, log.ParseLevel(cfg.LogLevel)),
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.Create(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	portfolio := services.NewPortfolioService(result.Store, result.Publisher, logger)
	reports := report.NewBuilder(result.Store, logger)

	// Report export to Google Sheets is optional.
	var exporter apphttp.ReportExporter
	if cfg.GoogleSpreadsheetID != "" {
		exp, err := sheets.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleReportSheet, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", log.FieldError, err)
			os.Exit(1)
		}
		exporter = exp
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	srv := apphttp.NewServer(":"+cfg.Port, portfolio, reports, exporter, logger)

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
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting predial server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
