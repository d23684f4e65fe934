package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

// DateLayout is the format week dates are written in
const DateLayout = "2006-01-02"

// weekDateLayouts are the accepted input formats for WEEK_END_DATE
var weekDateLayouts = []string{
	DateLayout,
	"02-Jan-06",
	"1/2/2006",
	"01/02/2006",
}

// IsMissing reports whether a cell holds one of the missing-value tokens
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return true
	}
	return strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") || strings.EqualFold(s, "null")
}

// ParseWeekDate parses a week-ending date in any accepted layout
func ParseWeekDate(cell string) (time.Time, error) {
	s := strings.TrimSpace(cell)
	var lastErr error
	for _, layout := range weekDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// cellParser parses the cells of one row and remembers the first failure,
// so a row can be decoded without an error check per field
type cellParser struct {
	table *RawTable
	row   []string
	line  int
	err   error
}

func (p *cellParser) fail(column, value string, cause error) {
	if p.err == nil {
		p.err = &apperrors.ParseError{File: p.table.Source, Row: p.line, Column: column, Value: value, Cause: cause}
	}
}

func (p *cellParser) cell(column string) string {
	return strings.TrimSpace(p.row[p.table.Index(column)])
}

// text returns the trimmed cell, or "" when missing
func (p *cellParser) text(column string) string {
	v := p.cell(column)
	if IsMissing(v) {
		return ""
	}
	return v
}

func (p *cellParser) id(column string) int64 {
	v := p.cell(column)
	if IsMissing(v) {
		p.fail(column, v, fmt.Errorf("id is missing"))
		return 0
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	// workbooks may render integer ids as floats
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		p.fail(column, v, fmt.Errorf("not an integer id"))
		return 0
	}
	if !fitsInt64(f) {
		p.fail(column, v, fmt.Errorf("id out of range"))
		return 0
	}
	return int64(f)
}

func (p *cellParser) integer(column string) int64 {
	v := p.cell(column)
	n, err := strconv.ParseInt(v, 10, 64)
	if err == nil {
		return n
	}
	f, ferr := strconv.ParseFloat(v, 64)
	if ferr != nil || f != math.Trunc(f) {
		p.fail(column, v, err)
		return 0
	}
	if !fitsInt64(f) {
		p.fail(column, v, fmt.Errorf("integer out of range"))
		return 0
	}
	return int64(f)
}

// fitsInt64 reports whether the integral float f converts to int64 without
// wrapping. Infinities are rejected.
func fitsInt64(f float64) bool {
	return f >= math.MinInt64 && f < math.MaxInt64
}

func (p *cellParser) number(column string) float64 {
	v := p.cell(column)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(column, v, err)
		return 0
	}
	return f
}

func (p *cellParser) optionalNumber(column string) *float64 {
	v := p.cell(column)
	if IsMissing(v) {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(column, v, err)
		return nil
	}
	if math.IsNaN(f) {
		return nil
	}
	return &f
}

func (p *cellParser) flag(column string) bool {
	v := p.cell(column)
	if f, err := strconv.ParseFloat(v, 64); err == nil && (f == 0 || f == 1) {
		return f == 1
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(column, v, err)
	}
	return b
}

func (p *cellParser) date(column string) time.Time {
	v := p.cell(column)
	t, err := ParseWeekDate(v)
	if err != nil {
		p.fail(column, v, err)
	}
	return t
}

func newCellParser(t *RawTable, i int) *cellParser {
	// header is line 1
	return &cellParser{table: t, row: t.Rows[i], line: i + 2}
}

// ParseTransactions decodes the weekly transaction table
func ParseTransactions(t *RawTable) ([]domain.TransactionRecord, error) {
	if err := t.Require(domain.TransactionColumns...); err != nil {
		return nil, err
	}

	records := make([]domain.TransactionRecord, 0, t.Len())
	for i := range t.Rows {
		p := newCellParser(t, i)
		rec := domain.TransactionRecord{
			WeekEndDate: p.date(domain.ColWeekEndDate),
			StoreID:     p.id(domain.ColStoreNum),
			ProductID:   p.id(domain.ColUPC),
			BasePrice:   p.optionalNumber(domain.ColBasePrice),
			OnDisplay:   p.flag(domain.ColDisplay),
			OnFeature:   p.flag(domain.ColFeature),
			Units:       p.integer(domain.ColUnits),
		}
		if p.err != nil {
			return nil, p.err
		}
		records = append(records, rec)
	}
	return records, nil
}

// ParseProducts decodes the product attribute table
func ParseProducts(t *RawTable) ([]domain.Product, error) {
	if err := t.Require(domain.ColProductUPC, domain.ColManufacturer, domain.ColCategory,
		domain.ColSubCategory, domain.ColProductSize); err != nil {
		return nil, err
	}
	hasDescription := t.Index(domain.ColDescription) >= 0

	products := make([]domain.Product, 0, t.Len())
	for i := range t.Rows {
		p := newCellParser(t, i)
		prod := domain.Product{
			ProductID:    p.id(domain.ColProductUPC),
			Manufacturer: p.text(domain.ColManufacturer),
			Category:     p.text(domain.ColCategory),
			SubCategory:  p.text(domain.ColSubCategory),
			Size:         p.text(domain.ColProductSize),
		}
		if hasDescription {
			prod.Description = p.text(domain.ColDescription)
		}
		if p.err != nil {
			return nil, p.err
		}
		products = append(products, prod)
	}
	return products, nil
}

// ParseStores decodes the store attribute table
func ParseStores(t *RawTable) ([]domain.Store, error) {
	if err := t.Require(domain.ColStoreID, domain.ColState, domain.ColMSA, domain.ColSegment,
		domain.ColSalesArea, domain.ColAvgWeeklyBaskets); err != nil {
		return nil, err
	}
	optional := func(col string) bool { return t.Index(col) >= 0 }

	stores := make([]domain.Store, 0, t.Len())
	for i := range t.Rows {
		p := newCellParser(t, i)
		s := domain.Store{
			StoreID:          p.id(domain.ColStoreID),
			State:            p.text(domain.ColState),
			MSA:              p.text(domain.ColMSA),
			Segment:          domain.Segment(p.text(domain.ColSegment)),
			SalesAreaSqFt:    p.number(domain.ColSalesArea),
			AvgWeeklyBaskets: p.number(domain.ColAvgWeeklyBaskets),
		}
		if optional(domain.ColStoreName) {
			s.Name = p.text(domain.ColStoreName)
		}
		if optional(domain.ColCity) {
			s.City = p.text(domain.ColCity)
		}
		if optional(domain.ColParkingSpaces) {
			s.ParkingSpaces = p.optionalNumber(domain.ColParkingSpaces)
		}
		if p.err != nil {
			return nil, p.err
		}
		stores = append(stores, s)
	}
	return stores, nil
}
