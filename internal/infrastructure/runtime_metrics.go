package infrastructure

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics samples Go runtime resource usage at the end of a run
type RuntimeMetrics struct {
	goRoutines   metric.Int64Gauge
	heapAlloc    metric.Int64Gauge
	totalAlloc   metric.Int64Gauge
	gcCount      metric.Int64Gauge
	wallDuration metric.Float64Gauge
}

// RuntimeStats holds one runtime sample
type RuntimeStats struct {
	GoRoutines int64
	HeapAlloc  int64
	TotalAlloc int64
	GCCount    uint32
	Elapsed    time.Duration
}

// NewRuntimeMetrics creates the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goRoutines, err := meter.Int64Gauge(
		"demandprep_goroutines",
		metric.WithDescription("Number of goroutines at sample time"),
	)
	if err != nil {
		return nil, err
	}

	heapAlloc, err := meter.Int64Gauge(
		"demandprep_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated and still in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	totalAlloc, err := meter.Int64Gauge(
		"demandprep_total_alloc_bytes",
		metric.WithDescription("Cumulative heap bytes allocated"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	gcCount, err := meter.Int64Gauge(
		"demandprep_gc_cycles",
		metric.WithDescription("Completed garbage collection cycles"),
	)
	if err != nil {
		return nil, err
	}

	wallDuration, err := meter.Float64Gauge(
		"demandprep_process_elapsed",
		metric.WithDescription("Wall time since process start in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RuntimeMetrics{
		goRoutines:   goRoutines,
		heapAlloc:    heapAlloc,
		totalAlloc:   totalAlloc,
		gcCount:      gcCount,
		wallDuration: wallDuration,
	}, nil
}

// Collect samples the runtime and records the gauges
func (rm *RuntimeMetrics) Collect(ctx context.Context, startTime time.Time) *RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &RuntimeStats{
		GoRoutines: int64(runtime.NumGoroutine()),
		HeapAlloc:  int64(memStats.HeapAlloc),
		TotalAlloc: int64(memStats.TotalAlloc),
		GCCount:    memStats.NumGC,
		Elapsed:    time.Since(startTime),
	}

	rm.goRoutines.Record(ctx, stats.GoRoutines)
	rm.heapAlloc.Record(ctx, stats.HeapAlloc)
	rm.totalAlloc.Record(ctx, stats.TotalAlloc)
	rm.gcCount.Record(ctx, int64(stats.GCCount))
	rm.wallDuration.Record(ctx, stats.Elapsed.Seconds())

	return stats
}

// LogValue implements slog.LogValuer
func (s *RuntimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("goroutines", s.GoRoutines),
		slog.Int64("heap_alloc_mb", s.HeapAlloc/1024/1024),
		slog.Int64("total_alloc_mb", s.TotalAlloc/1024/1024),
		slog.Any("gc_cycles", s.GCCount),
		slog.Duration("elapsed", s.Elapsed),
	)
}
