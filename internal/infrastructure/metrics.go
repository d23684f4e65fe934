package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by a preprocessing run
type PipelineMetrics struct {
	RowsLoaded     metric.Int64Counter
	RowsDropped    metric.Int64Counter
	RowsWritten    metric.Int64Counter
	PricesImputed  metric.Int64Counter
	StepExecutions metric.Int64Counter
	StepErrors     metric.Int64Counter
	StepDuration   metric.Float64Histogram
	RunDuration    metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsLoaded, err := meter.Int64Counter(
		"demandprep_rows_loaded",
		metric.WithDescription("Rows read from input tables"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"demandprep_rows_dropped",
		metric.WithDescription("Transaction rows removed by the cleaner"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"demandprep_rows_written",
		metric.WithDescription("Rows written to output tables"),
	)
	if err != nil {
		return nil, err
	}

	pricesImputed, err := meter.Int64Counter(
		"demandprep_prices_imputed",
		metric.WithDescription("Missing base prices filled with the store and product mean"),
	)
	if err != nil {
		return nil, err
	}

	stepExecutions, err := meter.Int64Counter(
		"demandprep_step_executions",
		metric.WithDescription("Pipeline step executions"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"demandprep_step_errors",
		metric.WithDescription("Pipeline step failures"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"demandprep_step_duration",
		metric.WithDescription("Pipeline step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"demandprep_run_duration",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsLoaded:     rowsLoaded,
		RowsDropped:    rowsDropped,
		RowsWritten:    rowsWritten,
		PricesImputed:  pricesImputed,
		StepExecutions: stepExecutions,
		StepErrors:     stepErrors,
		StepDuration:   stepDuration,
		RunDuration:    runDuration,
	}, nil
}

// RecordRows adds n to a per-table row counter
func (m *PipelineMetrics) RecordRows(ctx context.Context, counter metric.Int64Counter, table string, n int) {
	if m == nil || counter == nil {
		return
	}
	counter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("table", table)))
}

// RecordDropped adds n dropped rows for reason
func (m *PipelineMetrics) RecordDropped(ctx context.Context, reason string, n int) {
	if m == nil {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordImputed adds n imputed prices
func (m *PipelineMetrics) RecordImputed(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.PricesImputed.Add(ctx, int64(n))
}

// RecordStep records one step execution
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	attrs := []attribute.KeyValue{attribute.String("step.id", stepID)}
	m.StepExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))

	status := "success"
	if err != nil {
		status = "failure"
		errAttrs := append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
		m.StepErrors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}
	m.StepDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(append(attrs, attribute.String("status", status))...))
}

// RecordRun records the duration of a whole run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
