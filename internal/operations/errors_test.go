package operations_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "demandprep/internal/errors"
	"demandprep/internal/operations"
)

func TestOperationErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *operations.OperationError
		want string
	}{
		{
			name: "with step and cause",
			err:  operations.NewValidationError("validate", errors.New("bad row")),
			want: "[validation] validate: validation failed: bad row",
		},
		{
			name: "without step",
			err:  operations.NewFatalError("no steps", nil),
			want: "[fatal] no steps",
		},
		{
			name: "dependency",
			err:  operations.NewDependencyError("write", "encode_stores", "dependency encode_stores not completed"),
			want: "[dependency] write: dependency encode_stores not completed",
		},
		{
			name: "timeout",
			err:  operations.NewTimeoutError("load", "5m0s"),
			want: "[timeout] load: step exceeded timeout of 5m0s: context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	var nilErr *operations.OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}

func TestOperationErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  operations.ErrorType
		retryable bool
	}{
		{"nil", nil, "", false},
		{"plain error", errors.New("x"), operations.ErrorTypeExecution, false},
		{"retryable execution", operations.NewExecutionError("s", errors.New("x"), true), operations.ErrorTypeExecution, true},
		{"timeout", operations.NewTimeoutError("s", "1s"), operations.ErrorTypeTimeout, true},
		{"cancellation", operations.NewCancellationError("s"), operations.ErrorTypeCancellation, false},
		{"wrapped operation error", fmt.Errorf("run: %w", operations.NewTimeoutError("s", "1s")), operations.ErrorTypeTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, operations.GetErrorType(tt.err))
			assert.Equal(t, tt.retryable, operations.IsRetryable(tt.err))
		})
	}
}

func TestWrapError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, operations.WrapError(nil, "load", "failed"))
	})

	t.Run("context errors keep their meaning", func(t *testing.T) {
		err := operations.WrapError(fmt.Errorf("read: %w", context.DeadlineExceeded), "load", "failed")
		assert.Equal(t, operations.ErrorTypeTimeout, err.Type)

		err = operations.WrapError(context.Canceled, "load", "failed")
		assert.Equal(t, operations.ErrorTypeCancellation, err.Type)
	})

	t.Run("data errors become validation errors", func(t *testing.T) {
		dataErrors := []error{
			&apperrors.ParseError{File: "products.csv", Row: 3, Column: "UPC", Value: "abc"},
			&apperrors.DuplicateKeyError{Table: "stores", Key: "7"},
			&apperrors.MissingReferenceError{Table: "products", Field: "product_id", IDs: []int64{9}, Count: 1},
			&apperrors.ImputationError{StoreID: 1, ProductID: 2},
			&apperrors.UnmappedLabelError{Field: "SEG_VALUE_NAME", Label: "LUXURY"},
		}
		for _, dataErr := range dataErrors {
			err := operations.WrapError(fmt.Errorf("step: %w", dataErr), "validate", "failed")
			assert.Equal(t, operations.ErrorTypeValidation, err.Type, "%T", dataErr)
			assert.False(t, err.Retryable)
			assert.ErrorIs(t, err, dataErr)
		}
	})

	t.Run("storage errors stay execution errors", func(t *testing.T) {
		err := operations.WrapError(apperrors.NewStorageError("disk full", nil), "write", "failed")
		assert.Equal(t, operations.ErrorTypeExecution, err.Type)
		assert.Equal(t, "write", err.Step)
	})

	t.Run("operation errors pass through", func(t *testing.T) {
		orig := operations.NewExecutionError("", errors.New("x"), true)
		err := operations.WrapError(orig, "encode_stores", "failed")
		require.Same(t, orig, err)
		assert.Equal(t, "encode_stores", err.Step)
	})
}
