package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

// maxSheetName is Excel's limit on sheet name length
const maxSheetName = 31

// WorkbookWriter writes tables into one xlsx workbook, one sheet per table
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write saves tables to path. Cells that parse as numbers are stored as
// numbers; the rest as text.
func (w *WorkbookWriter) Write(path string, tables ...*domain.Table) error {
	if len(tables) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeStorage, "no tables to write", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		name := sheetName(t.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return apperrors.NewStorageError("failed to name sheet", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to add sheet %s", name), err)
		}
		if err := writeSheet(f, name, t); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save workbook %s", path), err)
	}

	w.logger.Info("Workbook written",
		slog.String("file", path),
		slog.Int("sheets", len(tables)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *domain.Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to open sheet %s", sheet), err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return apperrors.NewStorageError("failed to write header", err)
	}

	for r, row := range t.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return apperrors.NewStorageError("invalid cell reference", err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d of %s", r+2, sheet), err)
		}
	}

	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to flush sheet %s", sheet), err)
	}
	return nil
}

// cellValue keeps empty cells blank and stores numeric text as a number
func cellValue(v string) any {
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}
