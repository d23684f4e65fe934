package dataprocessing

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "demandprep/internal/errors"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoaderLoadsCSVTables(t *testing.T) {
	dir := t.TempDir()
	files := SourceFiles{
		Transactions: writeFile(t, dir, "transactions.csv", transactionsCSV),
		Products:     writeFile(t, dir, "products.csv", productsCSV),
		Stores:       writeFile(t, dir, "stores.csv", storesCSV),
	}

	ds, err := NewLoader(testLogger()).Load(context.Background(), files)
	require.NoError(t, err)

	assert.Len(t, ds.Transactions, 3)
	assert.Len(t, ds.Products, 2)
	assert.Len(t, ds.Stores, 2)

	assert.Equal(t, week("2009-01-14"), ds.Transactions[0].WeekEndDate)
	assert.False(t, ds.Transactions[1].HasPrice())
	assert.True(t, ds.Transactions[1].OnDisplay)
	assert.Equal(t, "BAG SNACKS", ds.Products[0].Category)
	assert.Equal(t, "MAINSTREAM", string(ds.Stores[1].Segment))
}

func TestLoaderLoadsWorkbookTables(t *testing.T) {
	dir := t.TempDir()
	products := filepath.Join(dir, "products.xlsx")
	writeWorkbook(t, products, "data", [][]any{
		{"UPC", "DESCRIPTION", "MANUFACTURER", "CATEGORY", "SUB_CATEGORY", "PRODUCT_SIZE"},
		{1111009477, "PL MINI TWIST PRETZELS", "PRIVATE LABEL", "BAG SNACKS", "PRETZELS", "15 OZ"},
	})

	files := SourceFiles{
		Transactions: writeFile(t, dir, "transactions.csv", transactionsCSV),
		Products:     products,
		Stores:       writeFile(t, dir, "stores.csv", storesCSV),
		Sheet:        "data",
	}

	ds, err := NewLoader(testLogger()).Load(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, ds.Products, 1)
	assert.Equal(t, int64(1111009477), ds.Products[0].ProductID)
	assert.Equal(t, "15 OZ", ds.Products[0].Size)
}

func TestLoaderFailures(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		files := SourceFiles{
			Transactions: writeFile(t, dir, "transactions.csv", transactionsCSV),
			Products:     filepath.Join(dir, "absent.csv"),
			Stores:       writeFile(t, dir, "stores.csv", storesCSV),
		}

		_, err := NewLoader(testLogger()).Load(context.Background(), files)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load products")
	})

	t.Run("malformed cell", func(t *testing.T) {
		dir := t.TempDir()
		files := SourceFiles{
			Transactions: writeFile(t, dir, "transactions.csv",
				"WEEK_END_DATE,STORE_NUM,UPC,BASE_PRICE,DISPLAY,FEATURE,UNITS\n14-Jan-09,367,abc,1.57,0,0,13\n"),
			Products: writeFile(t, dir, "products.csv", productsCSV),
			Stores:   writeFile(t, dir, "stores.csv", storesCSV),
		}

		_, err := NewLoader(testLogger()).Load(context.Background(), files)
		var perr *apperrors.ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, 2, perr.Row)
		assert.Equal(t, "UPC", perr.Column)
		assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		files := SourceFiles{
			Transactions: writeFile(t, dir, "transactions.csv", transactionsCSV),
			Products:     writeFile(t, dir, "products.csv", productsCSV),
			Stores:       writeFile(t, dir, "stores.csv", storesCSV),
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLoader(testLogger()).Load(ctx, files)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
