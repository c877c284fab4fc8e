package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"khata/internal/amqp"
	"khata/internal/analytics"
	"khata/internal/cli"
	"khata/internal/ledger"
	"khata/internal/report"
	gsheet "khata/internal/report/google"
	mem "khata/internal/report/memory"
	"khata/internal/services"
	"khata/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting khata-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// The worker always persists: records consumed off the queue must
	// survive a restart.
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No publisher: re-publishing consumed records would loop them back
	// onto the queue.
	svc := services.NewLedgerService(ledger.New(), repo, nil)
	if err := svc.Load(ctx, repo); err != nil {
		logger.Error("Failed to load ledger from storage", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	var exporter report.Exporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromConfig(ctx, *cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Report export target: Google Sheets", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = mem.New()
		logger.Info("Report export target: memory (no GOOGLE_SPREADSHEET_ID provided)")
	}

	engine := analytics.NewEngine(svc.Store())
	ingestWorker := worker.NewIngestWorker(svc)
	reportWorker := worker.NewReportWorker(engine, exporter, cfg.ReportInterval)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRecords(ctx, cfg.IngestPrefetch, func(msg *amqp.RecordMessage) error {
			return ingestWorker.HandleRecord(ctx, msg)
		})
	})

	g.Go(func() error {
		return reportWorker.Run(ctx)
	})

	// Reload from storage on the report cadence so exports pick up records
	// written by the API process, which shares the database file.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ReportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := svc.Load(ctx, repo); err != nil {
					logger.Error("Failed to reload ledger from storage", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
