package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"solarlog/internal/backend"
	"solarlog/internal/cli"
	"solarlog/internal/console"
	applog "solarlog/internal/log"
	"solarlog/internal/report"
	"solarlog/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Logs go to stderr so they stay out of the menu output.
	logger := cli.SetupLogger(cfg.Level(), os.Stderr, applog.ComponentConsole)

	tariff, err := cfg.Tariff()
	if err != nil {
		logger.Error("Invalid tariff", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	cleanup := func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", "error", err)
			}
		}
	}

	svc := services.NewSolarService(res.Backend, tariff)
	exporter := report.NewExporter(cfg.ExportDir, svc)
	app := console.New(svc, exporter, os.Stdin, os.Stdout)

	logger.Info("Starting solarlog", "backend", cfg.DataBackend)

	// Reading stdin cannot be interrupted, so the menu runs on its own
	// goroutine and a signal ends the process from here.
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout)
		logger.Info("Shutdown signal received")
	}

	cleanup()
	if err != nil {
		logger.Error("Console stopped with error", "error", err)
		os.Exit(1)
	}
}
