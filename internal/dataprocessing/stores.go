package dataprocessing

import (
	"log/slog"
	"strconv"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

// SegmentCodes ranks store segments from value to upscale
var SegmentCodes = map[string]int{
	string(domain.SegmentValue):      1,
	string(domain.SegmentMainstream): 2,
	string(domain.SegmentUpscale):    3,
}

// StoreEncoder turns the store table into model features: name, city and
// parking dropped, segment mapped to its rank, state and msa one-hot encoded
type StoreEncoder struct {
	logger *slog.Logger
}

// NewStoreEncoder creates a store encoder
func NewStoreEncoder(logger *slog.Logger) *StoreEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreEncoder{logger: logger.With(slog.String("component", "store_encoder"))}
}

// Encode returns the encoded store table with columns STORE_ID,
// ADDRESS_STATE_PROV_CODE_*, MSA_CODE_*, SEG_VALUE_NAME,
// SALES_AREA_SIZE_NUM, AVG_WEEKLY_BASKETS
func (e *StoreEncoder) Encode(stores []domain.Store) (*domain.Table, error) {
	states := make([]string, len(stores))
	msas := make([]string, len(stores))
	for i, s := range stores {
		states[i] = s.State
		msas[i] = s.MSA
	}

	stateEnc := NewOneHotEncoder(domain.ColState).Fit(states)
	msaEnc := NewOneHotEncoder(domain.ColMSA).Fit(msas)
	segmentEnc := NewOrdinalEncoder(domain.ColSegment, SegmentCodes)

	columns := []string{domain.ColStoreID}
	columns = append(columns, stateEnc.Columns()...)
	columns = append(columns, msaEnc.Columns()...)
	columns = append(columns, domain.ColSegment, domain.ColSalesArea, domain.ColAvgWeeklyBaskets)

	table := domain.NewTable(TableStores, columns)

	for i, s := range stores {
		code, ok := segmentEnc.Encode(string(s.Segment))
		if !ok {
			return nil, &apperrors.UnmappedLabelError{Field: domain.ColSegment, Label: string(s.Segment), Row: i + 2}
		}

		row := []string{strconv.FormatInt(s.StoreID, 10)}
		row = append(row, stateEnc.Transform(s.State)...)
		row = append(row, msaEnc.Transform(s.MSA)...)
		row = append(row,
			strconv.Itoa(code),
			formatFloat(s.SalesAreaSqFt),
			formatFloat(s.AvgWeeklyBaskets))
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Stores encoded",
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(columns)))

	return table, nil
}
