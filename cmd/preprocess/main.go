package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"demandprep/internal/app"
	"demandprep/internal/infrastructure"
)

func main() {
	inDir := flag.String("in-dir", "", "directory holding the transaction, product and store tables (overrides input.dir)")
	outDir := flag.String("out-dir", "", "directory the encoded tables are written to (overrides output.dir)")
	configPath := flag.String("config", "", "YAML configuration file (defaults to config.yaml when present)")
	flag.Parse()

	os.Exit(run(app.Options{
		Mode:       app.ModePreprocess,
		ConfigPath: *configPath,
		InputDir:   *inDir,
		OutputDir:  *outDir,
	}))
}

func run(opts app.Options) int {
	application, err := app.NewApplication(opts)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := application.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	logger := infrastructure.WithComponent(application.Logger, "preprocess")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := application.Run(ctx)
	if err != nil {
		logger.Error("Preprocessing failed",
			slog.String("run_id", resp.ID),
			slog.String("error", err.Error()))
		return 1
	}

	logger.Info("Preprocessing complete",
		slog.String("run_id", resp.ID),
		slog.String("transactions", application.Paths.TransactionsOutput),
		slog.String("products", application.Paths.ProductsOutput),
		slog.String("stores", application.Paths.StoresOutput))
	return 0
}
