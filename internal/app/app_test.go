package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandprep/internal/config"
	"demandprep/internal/operations"
	"demandprep/internal/shared/testutil"
)

const (
	transactionsCSV = `WEEK_END_DATE,STORE_NUM,UPC,BASE_PRICE,DISPLAY,FEATURE,UNITS
14-Jan-09,367,1111009477,1.57,0,0,13
21-Jan-09,367,1111009477,,0,1,8
`
	productsCSV = `UPC,DESCRIPTION,MANUFACTURER,CATEGORY,SUB_CATEGORY,PRODUCT_SIZE
1111009477,PL MINI TWIST PRETZELS,PRIVATE LABEL,BAG SNACKS,PRETZELS,15 OZ
`
	storesCSV = `STORE_ID,STORE_NAME,ADDRESS_CITY_NAME,ADDRESS_STATE_PROV_CODE,MSA_CODE,SEG_VALUE_NAME,PARKING_SPACE_QTY,SALES_AREA_SIZE_NUM,AVG_WEEKLY_BASKETS
367,15TH & MADISON,COVINGTON,KY,17140,VALUE,196,24721,12706.53
`
)

func writeInputs(t *testing.T) (inDir, outDir string) {
	t.Helper()
	inDir = t.TempDir()
	outDir = filepath.Join(t.TempDir(), "out")

	files := map[string]string{
		config.DefaultTransactionsInput: transactionsCSV,
		config.DefaultProductsInput:     productsCSV,
		config.DefaultStoresInput:       storesCSV,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(inDir, name), []byte(content), 0644))
	}
	return inDir, outDir
}

func newTestApplication(t *testing.T, mode Mode) (*Application, *testutil.BufferedSlogHandler) {
	t.Helper()
	inDir, outDir := writeInputs(t)
	logger, handler := testutil.NewTestLogger(t)

	a, err := NewApplication(Options{Mode: mode, InputDir: inDir, OutputDir: outDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a, handler
}

func TestApplicationPreprocess(t *testing.T) {
	a, handler := newTestApplication(t, ModePreprocess)

	resp, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.NotContains(t, resp.Steps, operations.StepIDProfile)

	for _, path := range []string{a.Paths.TransactionsOutput, a.Paths.ProductsOutput, a.Paths.StoresOutput} {
		_, err := os.Stat(path)
		assert.NoError(t, err, path)
	}
	_, err = os.Stat(a.Paths.MetricsFile)
	assert.True(t, os.IsNotExist(err), "metrics textfile only with the prometheus exporter")

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Run finished")
	assert.True(t, handler.ContainsAttr("status", string(operations.OperationStatusCompleted)))
}

func TestApplicationProfile(t *testing.T) {
	a, _ := newTestApplication(t, ModeProfile)

	resp, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Steps, 2)

	_, err = os.Stat(a.Paths.ProfileOutput)
	assert.NoError(t, err)
	_, err = os.Stat(a.Paths.TransactionsOutput)
	assert.True(t, os.IsNotExist(err))
}

func TestApplicationWritesMetricsTextfile(t *testing.T) {
	t.Setenv("DEMANDPREP_TELEMETRY_METRICS_EXPORTER", "prometheus")
	a, _ := newTestApplication(t, ModePreprocess)

	_, err := a.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(a.Paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "demandprep_rows_loaded")
	assert.Contains(t, string(data), "demandprep_step_executions")
}

func TestApplicationReportsFailure(t *testing.T) {
	inDir, outDir := writeInputs(t)
	require.NoError(t, os.Remove(filepath.Join(inDir, config.DefaultStoresInput)))
	logger, _ := testutil.NewTestLogger(t)

	a, err := NewApplication(Options{InputDir: inDir, OutputDir: outDir, Logger: logger})
	require.NoError(t, err)
	defer a.Shutdown(context.Background())

	resp, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.Equal(t, operations.StepStatusFailed, resp.Steps[operations.StepIDLoad].Status)
}

func TestNewApplicationRejectsUnknownMode(t *testing.T) {
	inDir, outDir := writeInputs(t)
	logger, _ := testutil.NewTestLogger(t)

	_, err := NewApplication(Options{Mode: "plot", InputDir: inDir, OutputDir: outDir, Logger: logger})
	assert.ErrorContains(t, err, "unknown mode")
}
