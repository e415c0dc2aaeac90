package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"solarlog/internal/amqp"
	"solarlog/internal/cli"
	applog "solarlog/internal/log"
	gsheet "solarlog/internal/sheets/google"
	"solarlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger(0, os.Stdout, applog.ComponentWorker).Error("Configuration validation failed", applog.NewFields().
			WithError(err).
			WithErrorType(applog.ErrorTypeConfiguration).
			ToSlice()...)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.Level(), os.Stdout, applog.ComponentWorker)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration invalid", applog.NewFields().
			WithError(err).
			WithErrorType(applog.ErrorTypeConfiguration).
			ToSlice()...)
		os.Exit(1)
	}
	tariff, err := cfg.Tariff()
	if err != nil {
		logger.Error("Invalid tariff", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting solarlog-worker")

	sqliteRepo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		DailySheet:    cfg.GoogleDailySheetName,
		MonthlySheet:  cfg.GoogleMonthlySheetName,
		PaybackSheet:  cfg.GooglePaybackSheetName,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.NewFields().
			WithError(err).
			WithErrorType(applog.ErrorTypeNetwork).
			ToSlice()...)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.NewFields().
			WithError(err).
			WithErrorType(applog.ErrorTypeNetwork).
			ToSlice()...)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	syncWorker := worker.NewSyncWorker(sqliteRepo, sheetsClient, tariff, cfg.SyncBatchSize)

	logger.Info("Performing startup sync check...", applog.FieldOperation, applog.OpStartup)
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeRecordSync(gctx, syncWorker.HandleSyncMessage)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if _, err := syncWorker.ProcessPendingRecords(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker started",
		"queue", cfg.AMQPQueue,
		"sync_interval", cfg.SyncInterval,
		"batch_size", cfg.SyncBatchSize)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
