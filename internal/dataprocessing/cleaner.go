package dataprocessing

import (
	"log/slog"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

// Drop reasons reported by the cleaner
const (
	DropZeroUnits    = "zero_units"
	DropAboveCeiling = "above_ceiling"
)

// CleanReport summarizes what the cleaner changed
type CleanReport struct {
	RowsIn        int            `json:"rows_in"`
	RowsOut       int            `json:"rows_out"`
	Dropped       map[string]int `json:"dropped"`
	PricesImputed int            `json:"prices_imputed"`
}

// TransactionCleaner removes degenerate rows and fills missing base prices
type TransactionCleaner struct {
	ceiling int64
	logger  *slog.Logger
}

// NewTransactionCleaner creates a cleaner dropping rows with more than
// ceiling units
func NewTransactionCleaner(ceiling int, logger *slog.Logger) *TransactionCleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionCleaner{
		ceiling: int64(ceiling),
		logger:  logger.With(slog.String("component", "cleaner")),
	}
}

// Clean returns a new slice without rows where units is 0 or above the
// ceiling, with every missing base price replaced by the mean price of the
// same (store, product) pair among the kept rows. The input is not modified.
// Prices of dropped rows do not contribute to the means, so a pair priced
// only on rows above the ceiling fails with an ImputationError.
func (c *TransactionCleaner) Clean(records []domain.TransactionRecord) ([]domain.TransactionRecord, *CleanReport, error) {
	report := &CleanReport{
		RowsIn:  len(records),
		Dropped: map[string]int{DropZeroUnits: 0, DropAboveCeiling: 0},
	}

	kept := make([]domain.TransactionRecord, 0, len(records))
	for _, rec := range records {
		switch {
		case rec.Units == 0:
			report.Dropped[DropZeroUnits]++
		case rec.Units > c.ceiling:
			report.Dropped[DropAboveCeiling]++
		default:
			kept = append(kept, rec)
		}
	}

	means := PairMeanPrices(kept)

	for i := range kept {
		if kept[i].HasPrice() {
			continue
		}
		key := kept[i].PairKey()
		mean, ok := means[key]
		if !ok {
			return nil, nil, &apperrors.ImputationError{StoreID: key.StoreID, ProductID: key.ProductID}
		}
		price := mean
		kept[i].BasePrice = &price
		report.PricesImputed++
	}

	report.RowsOut = len(kept)

	c.logger.Info("Transactions cleaned",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("dropped_zero_units", report.Dropped[DropZeroUnits]),
		slog.Int("dropped_above_ceiling", report.Dropped[DropAboveCeiling]),
		slog.Int("prices_imputed", report.PricesImputed))

	return kept, report, nil
}

// PairMeanPrices returns the arithmetic mean of the observed base prices of
// every (store, product) pair that has at least one
func PairMeanPrices(records []domain.TransactionRecord) map[domain.StoreProductKey]float64 {
	type acc struct {
		sum float64
		n   int
	}
	sums := make(map[domain.StoreProductKey]*acc)
	for _, rec := range records {
		if !rec.HasPrice() {
			continue
		}
		a, ok := sums[rec.PairKey()]
		if !ok {
			a = &acc{}
			sums[rec.PairKey()] = a
		}
		a.sum += *rec.BasePrice
		a.n++
	}

	means := make(map[domain.StoreProductKey]float64, len(sums))
	for k, a := range sums {
		means[k] = a.sum / float64(a.n)
	}
	return means
}
