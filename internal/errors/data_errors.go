package errors

import (
	"fmt"
	"strings"
)

// ParseError reports a cell that could not be read as the expected type
type ParseError struct {
	File   string
	Row    int
	Column string
	Value  string
	Cause  error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse error")
	if e.File != "" {
		fmt.Fprintf(&b, " in %s", e.File)
	}
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	fmt.Fprintf(&b, ": cannot parse %q", e.Value)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// DuplicateKeyError reports a key that appears more than once in a table
type DuplicateKeyError struct {
	Table string
	Key   string
	Rows  []int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s in %s table (rows %v)", e.Key, e.Table, e.Rows)
}

// MissingReferenceError reports transactions whose product or store id
// does not resolve in the attribute tables
type MissingReferenceError struct {
	Table string
	Field string
	IDs   []int64
	Count int
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%d transactions reference unknown %s in %s table (first ids: %v)",
		e.Count, e.Field, e.Table, e.IDs)
}

// ImputationError reports a missing price with no observed price for the
// same store and product to average
type ImputationError struct {
	StoreID   int64
	ProductID int64
}

func (e *ImputationError) Error() string {
	return fmt.Sprintf("cannot impute base price for store %d product %d: no observed price", e.StoreID, e.ProductID)
}

// UnmappedLabelError reports a categorical label outside the known mapping
type UnmappedLabelError struct {
	Field string
	Label string
	Row   int
}

func (e *UnmappedLabelError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("unmapped %s label %q at row %d", e.Field, e.Label, e.Row)
	}
	return fmt.Sprintf("unmapped %s label %q", e.Field, e.Label)
}
