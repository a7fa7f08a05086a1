package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"salesdash/internal/amqp"
	"salesdash/internal/backend"
	"salesdash/internal/cli"
	"salesdash/internal/log"
	"salesdash/internal/records/sheets"
	"salesdash/internal/services"
	"salesdash/internal/snapshot"
	"salesdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting salesdash-worker")

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}()
	}
	svc := services.NewSalesService(result.Backend, services.WithBackendName(backendCfg.Type.String()))

	store := cli.OpenSnapshotStore(logger, cfg.SQLiteDBPath)
	defer store.Close()
	cache := snapshot.NewCache(store)

	// Mirror into Google Sheets only when it is not already the primary store.
	var mirror worker.SaleMirror
	if cfg.MirrorEnabled() {
		if err := cfg.ValidateMirror(); err != nil {
			logger.Error("Invalid sheets mirror configuration", "error", err)
			os.Exit(1)
		}
		sheetsClient, err := sheets.NewFromConfig(ctx, sheets.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", "error", err)
			os.Exit(1)
		}
		mirror = sheetsClient
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled")
	}

	saleWorker := worker.NewSaleWorker(svc, cache, mirror)
	scheduler, err := worker.NewScheduler(saleWorker, cfg.SnapshotRefreshSchedule)
	if err != nil {
		logger.Error("Failed to schedule snapshot refresh", "error", err)
		os.Exit(1)
	}

	// Warm the snapshot so clients have a fallback from the start.
	if err := saleWorker.Refresh(ctx); err != nil {
		logger.Error("Initial snapshot refresh failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return scheduler.Run(gctx) })

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			err := amqpClient.ConsumeSaleCreated(gctx, saleWorker.HandleSaleCreated)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping AMQP consumption - no AMQP_URL provided")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
