package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

func TestTransactionCleaner_ZeroUnitRowDroppedBeforeImputation(t *testing.T) {
	records := []domain.TransactionRecord{
		tx("2009-01-14", 1, 100, nil, 0),
		tx("2009-01-21", 1, 100, price(2.50), 10),
	}

	cleaned, report, err := NewTransactionCleaner(750, testLogger()).Clean(records)
	require.NoError(t, err)

	require.Len(t, cleaned, 1)
	assert.Equal(t, int64(10), cleaned[0].Units)
	assert.Equal(t, 2.50, *cleaned[0].BasePrice)
	assert.Equal(t, 0, report.PricesImputed)
	assert.Equal(t, 1, report.Dropped[DropZeroUnits])
}

func TestTransactionCleaner_DropsDegenerateRows(t *testing.T) {
	records := []domain.TransactionRecord{
		tx("2009-01-14", 1, 100, price(1), 0),
		tx("2009-01-14", 1, 101, price(1), 750),
		tx("2009-01-14", 1, 102, price(1), 751),
		tx("2009-01-14", 1, 103, price(1), 1),
		tx("2009-01-14", 1, 104, price(1), 5000),
	}

	cleaned, report, err := NewTransactionCleaner(750, testLogger()).Clean(records)
	require.NoError(t, err)

	for _, rec := range cleaned {
		assert.NotZero(t, rec.Units)
		assert.LessOrEqual(t, rec.Units, int64(750))
	}
	assert.Len(t, cleaned, 2)
	assert.Equal(t, &CleanReport{
		RowsIn:  5,
		RowsOut: 2,
		Dropped: map[string]int{DropZeroUnits: 1, DropAboveCeiling: 2},
	}, report)
}

func TestTransactionCleaner_ImputesPairMean(t *testing.T) {
	records := []domain.TransactionRecord{
		tx("2009-01-14", 1, 100, price(2.00), 5),
		tx("2009-01-21", 1, 100, price(3.00), 5),
		tx("2009-01-28", 1, 100, nil, 5),
		// same product, other store: must not leak into store 1's mean
		tx("2009-01-14", 2, 100, price(10.00), 5),
		tx("2009-01-21", 2, 100, nil, 5),
		// dropped rows don't contribute to the mean
		tx("2009-02-04", 2, 100, price(99.00), 0),
	}

	cleaned, report, err := NewTransactionCleaner(750, testLogger()).Clean(records)
	require.NoError(t, err)
	require.Len(t, cleaned, 5)

	assert.InDelta(t, 2.50, *cleaned[2].BasePrice, 1e-9)
	assert.InDelta(t, 10.00, *cleaned[4].BasePrice, 1e-9)
	assert.Equal(t, 2, report.PricesImputed)

	// input untouched
	assert.Nil(t, records[2].BasePrice)
	assert.Nil(t, records[4].BasePrice)
}

func TestTransactionCleaner_ImputationError(t *testing.T) {
	records := []domain.TransactionRecord{
		tx("2009-01-14", 1, 100, price(2.00), 5),
		tx("2009-01-14", 3, 200, nil, 5),
	}

	_, _, err := NewTransactionCleaner(750, testLogger()).Clean(records)

	var ie *apperrors.ImputationError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, int64(3), ie.StoreID)
	assert.Equal(t, int64(200), ie.ProductID)
}

func TestTransactionCleaner_DroppedPricesNotAveraged(t *testing.T) {
	records := []domain.TransactionRecord{
		tx("2009-01-14", 1, 100, price(4.00), 900),
		tx("2009-01-21", 1, 100, nil, 5),
	}

	_, _, err := NewTransactionCleaner(750, testLogger()).Clean(records)

	var ie *apperrors.ImputationError
	require.True(t, errors.As(err, &ie), "got %v", err)
	assert.Equal(t, int64(1), ie.StoreID)
	assert.Equal(t, int64(100), ie.ProductID)
}

func TestTransactionCleaner_CustomCeiling(t *testing.T) {
	records := []domain.TransactionRecord{
		tx("2009-01-14", 1, 100, price(1), 11),
		tx("2009-01-14", 1, 101, price(1), 10),
	}

	cleaned, _, err := NewTransactionCleaner(10, nil).Clean(records)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)
	assert.Equal(t, int64(101), cleaned[0].ProductID)
}

func TestPairMeanPrices(t *testing.T) {
	means := PairMeanPrices([]domain.TransactionRecord{
		tx("2009-01-14", 1, 100, price(1), 1),
		tx("2009-01-21", 1, 100, price(2), 1),
		tx("2009-01-28", 1, 100, price(6), 1),
		tx("2009-01-14", 1, 200, nil, 1),
	})

	assert.Len(t, means, 1)
	assert.InDelta(t, 3.0, means[domain.StoreProductKey{StoreID: 1, ProductID: 100}], 1e-9)
}
