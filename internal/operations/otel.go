package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"demandprep/internal/infrastructure"
)

// TracerName names the tracer used for pipeline spans
const TracerName = "demandprep.operation"

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer recording spans and pipeline metrics
// on providers
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return NewNoopOperationTracer(), nil
	}

	metrics, err := infrastructure.NewPipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if providers.TracerProvider != nil {
		tracer = providers.TracerProvider.Tracer(TracerName)
	}

	return &OperationTracer{tracer: tracer, metrics: metrics}, nil
}

// NewNoopOperationTracer returns a tracer that records nothing
func NewNoopOperationTracer() *OperationTracer {
	return &OperationTracer{tracer: tracenoop.NewTracerProvider().Tracer(TracerName)}
}

// Metrics returns the pipeline instruments; nil for a no-op tracer
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID string, steps []string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.StringSlice("operation.steps", steps),
		),
	)
}

// TraceStageExecution creates a span for one step
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", stepID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStageCompletion closes out a step span and records step metrics
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stepID string, attempt int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("step.attempt", attempt),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	pt.metrics.RecordStep(ctx, stepID, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(
				attribute.String("step.id", stepID),
				attribute.String("error.type", string(GetErrorType(err))),
			),
		)
		return
	}

	infrastructure.AddSpanEvent(ctx, "step.completed", map[string]interface{}{
		"step.id":  stepID,
		"duration": duration.Seconds(),
	})
	span.SetStatus(codes.Ok, "step completed")
}

// RecordOperationCompletion closes out the run span and records run metrics
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, operationID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("operation.duration_seconds", duration.Seconds()))
	pt.metrics.RecordRun(ctx, duration, err == nil)

	if err != nil {
		infrastructure.RecordError(ctx, err,
			trace.WithAttributes(attribute.String("operation.id", operationID)))
		return
	}
	span.SetStatus(codes.Ok, "operation completed")
}
