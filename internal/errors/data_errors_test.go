package errors

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ParseError
		want string
	}{
		{
			name: "full location",
			err:  &ParseError{File: "product_data.csv", Row: 4, Column: "PRODUCT_SIZE", Value: "LARGE OZ"},
			want: `parse error in product_data.csv at row 4 column PRODUCT_SIZE: cannot parse "LARGE OZ"`,
		},
		{
			name: "value only",
			err:  &ParseError{Value: "abc"},
			want: `parse error: cannot parse "abc"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	_, cause := strconv.ParseFloat("x", 64)
	err := fmt.Errorf("load products: %w", &ParseError{Value: "x", Cause: cause})

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, strconv.ErrSyntax)
}

func TestNamedErrors_As(t *testing.T) {
	wrapped := fmt.Errorf("step failed: %w", &ImputationError{StoreID: 1, ProductID: 100})

	var ie *ImputationError
	require.True(t, errors.As(wrapped, &ie))
	assert.Equal(t, int64(1), ie.StoreID)
	assert.Equal(t, int64(100), ie.ProductID)
	assert.Contains(t, wrapped.Error(), "store 1 product 100")

	var ue *UnmappedLabelError
	assert.False(t, errors.As(wrapped, &ue))
}

func TestMissingReferenceError_Error(t *testing.T) {
	err := &MissingReferenceError{Table: "products", Field: "UPC", IDs: []int64{42, 43}, Count: 7}
	assert.Equal(t, "7 transactions reference unknown UPC in products table (first ids: [42 43])", err.Error())
}

func TestUnmappedLabelError_Error(t *testing.T) {
	assert.Equal(t, `unmapped SEG_VALUE_NAME label "PREMIUM" at row 3`,
		(&UnmappedLabelError{Field: "SEG_VALUE_NAME", Label: "PREMIUM", Row: 3}).Error())
	assert.Equal(t, `unmapped SEG_VALUE_NAME label ""`,
		(&UnmappedLabelError{Field: "SEG_VALUE_NAME"}).Error())
}

func TestDuplicateKeyError_Error(t *testing.T) {
	err := &DuplicateKeyError{Table: "stores", Key: "STORE_ID=389", Rows: []int{2, 9}}
	assert.Equal(t, "duplicate key STORE_ID=389 in stores table (rows [2 9])", err.Error())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ""},
		{"app error", NewConfigError("bad", nil), ErrTypeConfig},
		{"parse", &ParseError{Value: "x"}, ErrTypeParsing},
		{"wrapped imputation", fmt.Errorf("clean: %w", &ImputationError{}), ErrTypeImputation},
		{"reference", &MissingReferenceError{}, ErrTypeReference},
		{"label", &UnmappedLabelError{}, ErrTypeEncoding},
		{"duplicate", &DuplicateKeyError{}, ErrTypeValidation},
		{"app wrapping parse", NewStorageError("read", &ParseError{}), ErrTypeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}
