package exporter

import (
	"context"
	"log/slog"

	"demandprep/pkg/contracts/domain"
)

// Outputs are the three processed tables of a run
type Outputs struct {
	Transactions *domain.Table
	Products     *domain.Table
	Stores       *domain.Table
}

// Targets names the files Outputs are written to. An empty Workbook skips
// the xlsx copy.
type Targets struct {
	Transactions string
	Products     string
	Stores       string
	Workbook     string
	BOM          bool
}

// DatasetWriter writes the processed tables of a run
type DatasetWriter struct {
	csv      *CSVWriter
	workbook *WorkbookWriter
	logger   *slog.Logger
}

// NewDatasetWriter creates a writer for the processed tables
func NewDatasetWriter(logger *slog.Logger) *DatasetWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetWriter{
		csv:      NewCSVWriter(logger),
		workbook: NewWorkbookWriter(logger),
		logger:   logger.With(slog.String("component", "dataset_writer")),
	}
}

// Write writes the three CSV files, then the workbook when requested. It
// stops at the first failing write and returns the files written so far.
func (w *DatasetWriter) Write(ctx context.Context, out Outputs, targets Targets) ([]string, error) {
	jobs := []struct {
		path  string
		table *domain.Table
	}{
		{targets.Transactions, out.Transactions},
		{targets.Products, out.Products},
		{targets.Stores, out.Stores},
	}

	var written []string
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.csv.WriteTable(job.path, job.table, targets.BOM); err != nil {
			return written, err
		}
		written = append(written, job.path)
	}

	if targets.Workbook != "" {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := w.workbook.Write(targets.Workbook, out.Transactions, out.Products, out.Stores); err != nil {
			return written, err
		}
		written = append(written, targets.Workbook)
	}

	w.logger.InfoContext(ctx, "Outputs written", slog.Int("files", len(written)))
	return written, nil
}
