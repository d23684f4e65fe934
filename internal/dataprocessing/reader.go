package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "demandprep/internal/errors"
)

const utf8BOM = "\ufeff"

// RawTable is a header-indexed table of untyped cells as read from disk
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewRawTable builds a RawTable, trimming header names and padding short rows
func NewRawTable(source string, header []string, rows [][]string) (*RawTable, error) {
	t := &RawTable{
		Source: source,
		Header: make([]string, len(header)),
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
		if _, dup := t.index[name]; dup {
			return nil, apperrors.NewAppError(apperrors.ErrTypeParsing,
				fmt.Sprintf("%s: duplicate column %s", source, name), nil)
		}
		t.Header[i] = name
		t.index[name] = i
	}
	for i, row := range t.Rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			t.Rows[i] = padded
		}
	}
	return t, nil
}

// Index returns the position of a column or -1
func (t *RawTable) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Require checks that every named column is present
func (t *RawTable) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if t.Index(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewAppError(apperrors.ErrTypeParsing,
			fmt.Sprintf("%s: missing required columns %s", filepath.Base(t.Source), strings.Join(missing, ", ")), nil).
			WithContext("file", t.Source)
	}
	return nil
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// ReadTable reads a delimited or .xlsx file depending on its extension.
// sheet selects the worksheet of a workbook; empty means the first one.
func ReadTable(path, sheet string) (*RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	default:
		return ReadCSV(path)
	}
}

// ReadCSV reads a delimited file with a header row. The delimiter is
// sniffed from the header among ',', ';' and tab.
func ReadCSV(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	delim := sniffDelimiter(head)
	if bytes.HasPrefix(head, []byte(utf8BOM)) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeParsing, fmt.Sprintf("malformed csv %s", path), err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeParsing, fmt.Sprintf("%s: empty file, header row expected", path), nil)
	}

	return NewRawTable(path, records[0], records[1:])
}

// ReadXLSX reads a worksheet whose first non-empty row is the header
func ReadXLSX(path, sheet string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewAppError(apperrors.ErrTypeParsing, fmt.Sprintf("%s: workbook has no sheets", path), nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeParsing, fmt.Sprintf("%s: cannot read sheet %q", path, sheet), err)
	}

	headerRow := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, apperrors.NewAppError(apperrors.ErrTypeParsing, fmt.Sprintf("%s: sheet %q is empty", path, sheet), nil)
	}

	data := make([][]string, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, row)
	}

	return NewRawTable(path, rows[headerRow], data)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sniffDelimiter picks the candidate delimiter that occurs most often in
// the first line
func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
