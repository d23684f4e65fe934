package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandprep/internal/app"
	"demandprep/internal/config"
)

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		config.DefaultTransactionsInput: "WEEK_END_DATE,STORE_NUM,UPC,BASE_PRICE,DISPLAY,FEATURE,UNITS\n14-Jan-09,367,1111009477,1.57,0,0,13\n",
		config.DefaultProductsInput:     "UPC,DESCRIPTION,MANUFACTURER,CATEGORY,SUB_CATEGORY,PRODUCT_SIZE\n1111009477,PL MINI TWIST PRETZELS,PRIVATE LABEL,BAG SNACKS,PRETZELS,15 OZ\n",
		config.DefaultStoresInput:       "STORE_ID,STORE_NAME,ADDRESS_CITY_NAME,ADDRESS_STATE_PROV_CODE,MSA_CODE,SEG_VALUE_NAME,PARKING_SPACE_QTY,SALES_AREA_SIZE_NUM,AVG_WEEKLY_BASKETS\n367,15TH & MADISON,COVINGTON,KY,17140,VALUE,196,24721,12706.53\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestRun(t *testing.T) {
	t.Run("writes the profile report", func(t *testing.T) {
		inDir, outDir := t.TempDir(), t.TempDir()
		writeInputs(t, inDir)

		code := run(app.Options{Mode: app.ModeProfile, InputDir: inDir, OutputDir: outDir})
		require.Equal(t, 0, code)

		data, err := os.ReadFile(filepath.Join(outDir, config.DefaultProfileOutput))
		require.NoError(t, err)
		assert.True(t, json.Valid(data))

		_, err = os.Stat(filepath.Join(outDir, config.DefaultTransactionsOutput))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing inputs fail the run", func(t *testing.T) {
		code := run(app.Options{Mode: app.ModeProfile, InputDir: t.TempDir(), OutputDir: t.TempDir()})
		assert.Equal(t, 1, code)
	})
}
