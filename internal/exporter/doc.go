// Package exporter writes processed tables to disk.
//
// CSVWriter writes a domain.Table as a delimited file, optionally prefixed
// with a UTF-8 BOM for Excel. WorkbookWriter writes several tables into one
// xlsx workbook with a sheet per table. DatasetWriter ties both together
// for the three outputs of a preprocessing run:
//
//	w := exporter.NewDatasetWriter(logger)
//	files, err := w.Write(ctx, exporter.Outputs{...}, exporter.Targets{...})
//
// WriteJSON stores reports such as the dataset profile.
package exporter
