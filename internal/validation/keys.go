package validation

import (
	"fmt"
	"strconv"

	"demandprep/internal/dataprocessing"
	apperrors "demandprep/internal/errors"
	"demandprep/pkg/contracts/domain"
)

// CheckDuplicates fails on the first repeated (week, store, product)
// transaction key, product id or store id. Rows in the error are one-based
// file rows with the header counted.
func CheckDuplicates(ds *dataprocessing.Dataset) error {
	txSeen := make(map[domain.TransactionKey]int, len(ds.Transactions))
	for i, rec := range ds.Transactions {
		key := rec.Key()
		if first, ok := txSeen[key]; ok {
			return &apperrors.DuplicateKeyError{
				Table: dataprocessing.TableTransactions,
				Key: fmt.Sprintf("(%s, %d, %d)",
					key.Week.Format(dataprocessing.DateLayout), key.StoreID, key.ProductID),
				Rows: []int{first + 2, i + 2},
			}
		}
		txSeen[key] = i
	}

	productSeen := make(map[int64]int, len(ds.Products))
	for i, p := range ds.Products {
		if err := checkID(productSeen, dataprocessing.TableProducts, p.ProductID, i); err != nil {
			return err
		}
	}

	storeSeen := make(map[int64]int, len(ds.Stores))
	for i, s := range ds.Stores {
		if err := checkID(storeSeen, dataprocessing.TableStores, s.StoreID, i); err != nil {
			return err
		}
	}

	return nil
}

func checkID(seen map[int64]int, table string, id int64, i int) error {
	if first, ok := seen[id]; ok {
		return &apperrors.DuplicateKeyError{
			Table: table,
			Key:   strconv.FormatInt(id, 10),
			Rows:  []int{first + 2, i + 2},
		}
	}
	seen[id] = i
	return nil
}
