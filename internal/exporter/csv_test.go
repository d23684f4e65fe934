package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

func sampleTable(t *testing.T, name string) *domain.Table {
	t.Helper()
	table := domain.NewTable(name, []string{"ID", "LABEL", "VALUE"})
	require.NoError(t, table.AppendRow([]string{"1", "a,b", "2.5"}))
	require.NoError(t, table.AppendRow([]string{"2", "plain", ""}))
	return table
}

func readCSV(t *testing.T, path string) ([]byte, [][]string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return data, records
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    [][]string
		wantBOM bool
	}{
		{
			name:    "headers and records",
			options: WriteOptions{Headers: []string{"A", "B"}, Records: [][]string{{"1", "2"}}},
			want:    [][]string{{"A", "B"}, {"1", "2"}},
		},
		{
			name:    "with BOM",
			options: WriteOptions{Headers: []string{"A"}, Records: [][]string{{"x"}}, BOMPrefix: true},
			want:    [][]string{{"A"}, {"x"}},
			wantBOM: true,
		},
		{
			name:    "header only",
			options: WriteOptions{Headers: []string{"A", "B"}},
			want:    [][]string{{"A", "B"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			require.NoError(t, NewCSVWriter(nil).WriteCSV(path, tt.options))

			data, records := readCSV(t, path)
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(data, utf8BOM))
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"A"}, Records: [][]string{{"1"}}, BOMPrefix: true}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"A"}, Records: [][]string{{"2"}}, Append: true, BOMPrefix: true}))

	data, records := readCSV(t, path)
	assert.Equal(t, 1, bytes.Count(data, utf8BOM))
	assert.Equal(t, [][]string{{"A"}, {"1"}, {"2"}}, records)
}

func TestCSVWriter_WriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, NewCSVWriter(nil).WriteTable(path, sampleTable(t, "stores"), false))

	_, records := readCSV(t, path)
	assert.Equal(t, [][]string{
		{"ID", "LABEL", "VALUE"},
		{"1", "a,b", "2.5"},
		{"2", "plain", ""},
	}, records)
}

func TestCSVWriter_Failure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := NewCSVWriter(nil).WriteTable(filepath.Join(blocker, "out.csv"), sampleTable(t, "stores"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write stores table")
	assert.Equal(t, apperrors.ErrTypeStorage, apperrors.TypeOf(err))
}

func TestWorkbookWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, NewWorkbookWriter(nil).Write(path, sampleTable(t, "transactions"), sampleTable(t, "products")))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"transactions", "products"}, f.GetSheetList())

	rows, err := f.GetRows("products")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "LABEL", "VALUE"}, rows[0])
	assert.Equal(t, []string{"1", "a,b", "2.5"}, rows[1])
	assert.Equal(t, []string{"2", "plain"}, rows[2])
}

func TestWorkbookWriter_NoTables(t *testing.T) {
	err := NewWorkbookWriter(nil).Write(filepath.Join(t.TempDir(), "book.xlsx"))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "profile.json")
	require.NoError(t, WriteJSON(path, map[string]int{"rows": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows": 3}`, string(data))
}

func TestDatasetWriter_Write(t *testing.T) {
	dir := t.TempDir()
	out := Outputs{
		Transactions: sampleTable(t, "transactions"),
		Products:     sampleTable(t, "products"),
		Stores:       sampleTable(t, "stores"),
	}
	targets := Targets{
		Transactions: filepath.Join(dir, "updated_train_data.csv"),
		Products:     filepath.Join(dir, "updated_product_data.csv"),
		Stores:       filepath.Join(dir, "updated_store_data.csv"),
		Workbook:     filepath.Join(dir, "updated_data.xlsx"),
		BOM:          true,
	}

	t.Run("writes every target", func(t *testing.T) {
		written, err := NewDatasetWriter(nil).Write(context.Background(), out, targets)
		require.NoError(t, err)
		assert.Equal(t, []string{targets.Transactions, targets.Products, targets.Stores, targets.Workbook}, written)

		for _, path := range written {
			assert.FileExists(t, path)
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		bad := targets
		bad.Products = filepath.Join(blocker, "products.csv")

		written, err := NewDatasetWriter(nil).Write(context.Background(), out, bad)
		require.Error(t, err)
		assert.Equal(t, []string{targets.Transactions}, written)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		written, err := NewDatasetWriter(nil).Write(ctx, out, targets)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, written)
	})
}
