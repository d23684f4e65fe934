package dataprocessing

import (
	"sort"

	"demandprep/pkg/contracts/domain"
)

// Orphans lists transaction ids with no attribute row
type Orphans struct {
	ProductIDs  []int64 `json:"product_ids"`
	StoreIDs    []int64 `json:"store_ids"`
	ProductRows int     `json:"product_rows"`
	StoreRows   int     `json:"store_rows"`
}

// Empty reports whether every transaction resolves
func (o Orphans) Empty() bool {
	return o.ProductRows == 0 && o.StoreRows == 0
}

// FindOrphans checks every transaction's product and store id against the
// attribute tables. Ids are returned sorted ascending.
func FindOrphans(records []domain.TransactionRecord, products []domain.Product, stores []domain.Store) Orphans {
	knownProducts := make(map[int64]struct{}, len(products))
	for _, p := range products {
		knownProducts[p.ProductID] = struct{}{}
	}
	knownStores := make(map[int64]struct{}, len(stores))
	for _, s := range stores {
		knownStores[s.StoreID] = struct{}{}
	}

	var o Orphans
	orphanProducts := make(map[int64]struct{})
	orphanStores := make(map[int64]struct{})
	for _, rec := range records {
		if _, ok := knownProducts[rec.ProductID]; !ok {
			o.ProductRows++
			orphanProducts[rec.ProductID] = struct{}{}
		}
		if _, ok := knownStores[rec.StoreID]; !ok {
			o.StoreRows++
			orphanStores[rec.StoreID] = struct{}{}
		}
	}

	o.ProductIDs = sortedIDs(orphanProducts)
	o.StoreIDs = sortedIDs(orphanStores)
	return o
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
