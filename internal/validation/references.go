package validation

import (
	"log/slog"

	"demandprep/internal/config"
	"demandprep/internal/dataprocessing"
	apperrors "demandprep/internal/errors"
)

// maxReportedIDs caps the orphan ids carried by a MissingReferenceError
const maxReportedIDs = 10

// CheckReferences resolves every transaction's product and store id. Under
// the reject policy an orphan fails with a MissingReferenceError, products
// checked first. Under tolerate the orphans are logged and returned.
func (v *RecordValidator) CheckReferences(ds *dataprocessing.Dataset) (dataprocessing.Orphans, error) {
	orphans := dataprocessing.FindOrphans(ds.Transactions, ds.Products, ds.Stores)
	if orphans.Empty() {
		return orphans, nil
	}

	if v.policy == config.ReferenceTolerate {
		v.logger.Warn("Transactions reference unknown ids, keeping rows",
			slog.Int("orphan_product_rows", orphans.ProductRows),
			slog.Int("orphan_store_rows", orphans.StoreRows),
			slog.Any("product_ids", firstIDs(orphans.ProductIDs)),
			slog.Any("store_ids", firstIDs(orphans.StoreIDs)))
		return orphans, nil
	}

	if orphans.ProductRows > 0 {
		return orphans, &apperrors.MissingReferenceError{
			Table: dataprocessing.TableProducts,
			Field: "product_id",
			IDs:   firstIDs(orphans.ProductIDs),
			Count: orphans.ProductRows,
		}
	}
	return orphans, &apperrors.MissingReferenceError{
		Table: dataprocessing.TableStores,
		Field: "store_id",
		IDs:   firstIDs(orphans.StoreIDs),
		Count: orphans.StoreRows,
	}
}

func firstIDs(ids []int64) []int64 {
	if len(ids) > maxReportedIDs {
		return ids[:maxReportedIDs]
	}
	return ids
}
