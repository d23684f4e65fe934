package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"demandprep/internal/config"
	"demandprep/internal/infrastructure"
	"demandprep/internal/operations"
)

// Mode selects which pipeline a run executes
type Mode string

const (
	// ModePreprocess runs the full preprocessing pipeline
	ModePreprocess Mode = "preprocess"
	// ModeProfile loads and profiles the inputs only
	ModeProfile Mode = "profile"
)

// Options are the command-line overrides of a run
type Options struct {
	Mode       Mode
	ConfigPath string
	InputDir   string
	OutputDir  string
	// Logger replaces the configured logger when set
	Logger *slog.Logger
}

// Application holds the wired components of one pipeline run
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Tracer        *operations.OperationTracer
	Manager       *operations.Manager

	mode    Mode
	runtime *infrastructure.RuntimeMetrics
	started time.Time
}

// NewApplication loads the configuration and wires logging, telemetry and
// the pipeline for opts.Mode
func NewApplication(opts Options) (*Application, error) {
	started := time.Now()

	if opts.Mode == "" {
		opts.Mode = ModePreprocess
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.InputDir != "" {
		cfg.Input.Dir = opts.InputDir
	}
	if opts.OutputDir != "" {
		cfg.Output.Dir = opts.OutputDir
	}

	paths, err := cfg.Paths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize operation tracer: %w", err)
	}

	runtimeMetrics, err := infrastructure.NewRuntimeMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize runtime metrics: %w", err)
	}

	deps := operations.StageDeps{
		Config:  cfg,
		Paths:   paths,
		Logger:  logger,
		Metrics: tracer.Metrics(),
	}

	var registry *operations.Registry
	switch opts.Mode {
	case ModePreprocess:
		registry, err = operations.NewPreprocessRegistry(deps)
	case ModeProfile:
		registry, err = operations.NewProfileRegistry(deps)
	default:
		err = fmt.Errorf("unknown mode %q", opts.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	manager := operations.NewManager(registry, operations.ConfigFromPipeline(cfg.Pipeline), tracer, logger)

	return &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		Tracer:        tracer,
		Manager:       manager,
		mode:          opts.Mode,
		runtime:       runtimeMetrics,
		started:       started,
	}, nil
}

// Run executes the pipeline once and writes the metrics textfile when the
// Prometheus exporter is enabled. A trace ID already on ctx becomes the run ID.
func (a *Application) Run(ctx context.Context) (*operations.OperationResponse, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)

	a.Logger.InfoContext(ctx, "Run starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("mode", string(a.mode)),
		slog.String("input_dir", a.Paths.InputDir),
		slog.String("output_dir", a.Paths.OutputDir),
		slog.String("reference_policy", string(a.Config.Pipeline.ReferencePolicy)),
		slog.Int("units_ceiling", a.Config.Pipeline.UnitsCeiling))

	resp, _, err := a.Manager.Execute(ctx, operations.OperationRequest{ID: runID})

	stats := a.runtime.Collect(ctx, a.started)
	a.Logger.InfoContext(ctx, "Run finished",
		slog.String("status", string(resp.Status)),
		slog.Duration("duration", resp.Duration),
		slog.Any("runtime", stats))

	if metricsErr := a.writeMetrics(); metricsErr != nil {
		infrastructure.WithError(a.Logger, metricsErr).WarnContext(ctx, "Metrics textfile not written")
	}

	return resp, err
}

func (a *Application) writeMetrics() error {
	if a.Config.Telemetry.MetricsExporter != "prometheus" {
		return nil
	}
	if err := a.Paths.EnsureOutputDir(); err != nil {
		return err
	}
	return a.OTelProviders.WriteMetricsFile(a.Paths.MetricsFile)
}

// Shutdown flushes telemetry and closes the log file
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %v", errs)
	}
	return nil
}
