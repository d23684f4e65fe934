// Package operations runs the preprocessing pipeline as an ordered set of
// steps.
//
// Core Components:
//
// Manager: executes the steps of a Registry sequentially in dependency
// order. Each attempt of a step runs under its own timeout; retryable
// failures are retried with exponential backoff and a failed step marks
// every step that depends on it as skipped.
//
// Step: a single unit of work. Steps exchange their outputs through the
// OperationState context rather than shared globals.
//
// Registry: registers steps and sorts them topologically, breaking ties by
// registration order.
//
// OperationTracer: records a span per run and per step along with the
// pipeline metrics.
//
// The concrete steps are load, validate, profile, clean_transactions,
// encode_products, encode_stores and write. NewPreprocessRegistry wires the
// full pipeline and NewProfileRegistry the profiling run:
//
//	registry, err := operations.NewPreprocessRegistry(operations.StageDeps{
//		Config: cfg,
//		Paths:  paths,
//		Logger: logger,
//	})
//	manager := operations.NewManager(registry, operations.ConfigFromPipeline(cfg.Pipeline), tracer, logger)
//	resp, state, err := manager.Execute(ctx, operations.OperationRequest{})
package operations
