package dataprocessing

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "demandprep/internal/errors"
)

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name       string
		content    string
		wantHeader []string
		wantRows   int
	}{
		{
			name:       "comma separated",
			content:    "A,B\n1,2\n3,4\n",
			wantHeader: []string{"A", "B"},
			wantRows:   2,
		},
		{
			name:       "semicolon separated with BOM",
			content:    "\ufeffA;B\n1;2\n",
			wantHeader: []string{"A", "B"},
			wantRows:   1,
		},
		{
			name:       "tab separated with padded header",
			content:    " A \t B\n1\t2\n",
			wantHeader: []string{"A", "B"},
			wantRows:   1,
		},
		{
			name:       "header only",
			content:    "A,B\n",
			wantHeader: []string{"A", "B"},
			wantRows:   0,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, fmt.Sprintf("table%d.csv", i), tt.content)
			raw, err := ReadCSV(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, raw.Header)
			assert.Equal(t, tt.wantRows, raw.Len())
		})
	}
}

func TestReadCSV_ShortRowsPadded(t *testing.T) {
	path := writeFile(t, t.TempDir(), "short.csv", "A,B,C\n1\n")
	raw, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, raw.Rows[0])
}

func TestReadCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadCSV(filepath.Join(dir, "absent.csv"))
	assert.Error(t, err)

	_, err = ReadCSV(writeFile(t, dir, "empty.csv", ""))
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))

	_, err = ReadCSV(writeFile(t, dir, "dup.csv", "A,A\n1,2\n"))
	assert.Equal(t, apperrors.ErrTypeParsing, apperrors.TypeOf(err))
}

func TestRawTable_Require(t *testing.T) {
	raw, err := NewRawTable("stores.csv", []string{"STORE_ID"}, nil)
	require.NoError(t, err)

	assert.NoError(t, raw.Require("STORE_ID"))

	err = raw.Require("STORE_ID", "MSA_CODE", "SEG_VALUE_NAME")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MSA_CODE, SEG_VALUE_NAME")
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"STORE_ID", "SEG_VALUE_NAME"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{367, "VALUE"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]interface{}{389, "UPSCALE"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	raw, err := ReadTable(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"STORE_ID", "SEG_VALUE_NAME"}, raw.Header)
	require.Equal(t, 2, raw.Len())
	assert.Equal(t, []string{"389", "UPSCALE"}, raw.Rows[1])

	_, err = ReadXLSX(path, "NoSuchSheet")
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ',', sniffDelimiter([]byte("a,b,c\n1;2")))
	assert.Equal(t, ';', sniffDelimiter([]byte("a;b;c")))
	assert.Equal(t, '\t', sniffDelimiter([]byte("a\tb")))
	assert.Equal(t, ',', sniffDelimiter([]byte("single")))
}
