package dataprocessing

import (
	"strconv"
)

// OneHotEncoder expands a nominal field into one 0/1 indicator column per
// distinct value, in the order values were first seen during Fit
type OneHotEncoder struct {
	Field  string
	values []string
	index  map[string]int
}

// NewOneHotEncoder creates an unfitted encoder for field
func NewOneHotEncoder(field string) *OneHotEncoder {
	return &OneHotEncoder{Field: field, index: make(map[string]int)}
}

// Fit records the distinct values of the field
func (e *OneHotEncoder) Fit(values []string) *OneHotEncoder {
	for _, v := range values {
		if _, seen := e.index[v]; !seen {
			e.index[v] = len(e.values)
			e.values = append(e.values, v)
		}
	}
	return e
}

// Values returns the fitted distinct values
func (e *OneHotEncoder) Values() []string {
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// Columns returns the indicator column names, FIELD_VALUE
func (e *OneHotEncoder) Columns() []string {
	cols := make([]string, len(e.values))
	for i, v := range e.values {
		cols[i] = e.Field + "_" + v
	}
	return cols
}

// Transform returns the indicator cells for value. A value not seen during
// Fit yields all zeros.
func (e *OneHotEncoder) Transform(value string) []string {
	cells := make([]string, len(e.values))
	for i := range cells {
		cells[i] = "0"
	}
	if i, ok := e.index[value]; ok {
		cells[i] = "1"
	}
	return cells
}

// OrdinalEncoder maps labels to fixed integer codes
type OrdinalEncoder struct {
	Field   string
	mapping map[string]int
}

// NewOrdinalEncoder creates an encoder with the given label codes
func NewOrdinalEncoder(field string, mapping map[string]int) *OrdinalEncoder {
	m := make(map[string]int, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &OrdinalEncoder{Field: field, mapping: m}
}

// Encode returns the code of label
func (e *OrdinalEncoder) Encode(label string) (int, bool) {
	code, ok := e.mapping[label]
	return code, ok
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
