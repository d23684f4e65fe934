package dataprocessing

import (
	"log/slog"
	"strconv"

	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

// ProductEncoder turns the product table into model features: description
// dropped, size binned per category, nominal fields one-hot encoded
type ProductEncoder struct {
	logger *slog.Logger
}

// NewProductEncoder creates a product encoder
func NewProductEncoder(logger *slog.Logger) *ProductEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductEncoder{logger: logger.With(slog.String("component", "product_encoder"))}
}

// Encode returns the encoded product table with columns UPC,
// MANUFACTURER_*, CATEGORY_*, SUB_CATEGORY_*, PRODUCT_SIZE. An empty
// PRODUCT_SIZE cell is a missing bin.
func (e *ProductEncoder) Encode(products []domain.Product) (*domain.Table, error) {
	manufacturers := make([]string, len(products))
	categories := make([]string, len(products))
	subCategories := make([]string, len(products))
	for i, p := range products {
		manufacturers[i] = p.Manufacturer
		categories[i] = p.Category
		subCategories[i] = p.SubCategory
	}

	manufacturerEnc := NewOneHotEncoder(domain.ColManufacturer).Fit(manufacturers)
	categoryEnc := NewOneHotEncoder(domain.ColCategory).Fit(categories)
	subCategoryEnc := NewOneHotEncoder(domain.ColSubCategory).Fit(subCategories)

	columns := []string{domain.ColProductUPC}
	columns = append(columns, manufacturerEnc.Columns()...)
	columns = append(columns, categoryEnc.Columns()...)
	columns = append(columns, subCategoryEnc.Columns()...)
	columns = append(columns, domain.ColProductSize)

	table := domain.NewTable(TableProducts, columns)
	unbinned := make(map[string]bool)
	outOfRange := 0

	for i, p := range products {
		size, err := ParseSize(p.Size)
		if err != nil {
			return nil, &apperrors.ParseError{File: TableProducts, Row: i + 2, Column: domain.ColProductSize, Value: p.Size, Cause: err}
		}

		bin := ""
		label, ok, known := CategoryBin(p.Category, size)
		switch {
		case !known:
			if !unbinned[p.Category] {
				unbinned[p.Category] = true
				e.logger.Warn("No size bins for category, size left missing",
					slog.String("category", p.Category))
			}
		case !ok:
			outOfRange++
			e.logger.Debug("Size outside category bins",
				slog.Int64("upc", p.ProductID),
				slog.String("category", p.Category),
				slog.Float64("size", size))
		default:
			bin = strconv.Itoa(label)
		}

		row := []string{strconv.FormatInt(p.ProductID, 10)}
		row = append(row, manufacturerEnc.Transform(p.Manufacturer)...)
		row = append(row, categoryEnc.Transform(p.Category)...)
		row = append(row, subCategoryEnc.Transform(p.SubCategory)...)
		row = append(row, bin)
		if err := table.AppendRow(row); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Products encoded",
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(columns)),
		slog.Int("sizes_out_of_range", outOfRange),
		slog.Int("categories_without_bins", len(unbinned)))

	return table, nil
}
