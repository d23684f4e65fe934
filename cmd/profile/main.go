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
	outDir := flag.String("out-dir", "", "directory profile.json is written to (overrides output.dir)")
	configPath := flag.String("config", "", "YAML configuration file (defaults to config.yaml when present)")
	flag.Parse()

	os.Exit(run(app.Options{
		Mode:       app.ModeProfile,
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

	logger := infrastructure.WithComponent(application.Logger, "profile")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := application.Run(ctx)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Profiling failed",
			slog.String("run_id", resp.ID))
		return 1
	}

	logger.Info("Profile written",
		slog.String("run_id", resp.ID),
		slog.String("path", application.Paths.ProfileOutput))
	return 0
}
