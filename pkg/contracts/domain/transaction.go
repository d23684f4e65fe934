package domain

import (
	"time"
)

// Input column names of the weekly transaction table
const (
	ColWeekEndDate = "WEEK_END_DATE"
	ColStoreNum    = "STORE_NUM"
	ColUPC         = "UPC"
	ColBasePrice   = "BASE_PRICE"
	ColDisplay     = "DISPLAY"
	ColFeature     = "FEATURE"
	ColUnits       = "UNITS"
)

// TransactionColumns lists the transaction columns in output order
var TransactionColumns = []string{
	ColWeekEndDate,
	ColStoreNum,
	ColUPC,
	ColBasePrice,
	ColDisplay,
	ColFeature,
	ColUnits,
}

// TransactionRecord represents one week of sales of a product in a store
type TransactionRecord struct {
	WeekEndDate time.Time `json:"week_end_date" csv:"WEEK_END_DATE" validate:"required"`
	StoreID     int64     `json:"store_id" csv:"STORE_NUM" validate:"gt=0"`
	ProductID   int64     `json:"product_id" csv:"UPC" validate:"gt=0"`
	BasePrice   *float64  `json:"base_price,omitempty" csv:"BASE_PRICE" validate:"omitempty,gte=0"`
	OnDisplay   bool      `json:"on_display" csv:"DISPLAY"`
	OnFeature   bool      `json:"on_feature" csv:"FEATURE"`
	Units       int64     `json:"units" csv:"UNITS" validate:"gte=0"`
}

// TransactionKey is the composite (week, store, product) key of a transaction
type TransactionKey struct {
	Week      time.Time
	StoreID   int64
	ProductID int64
}

// Key returns the composite key of the record
func (r TransactionRecord) Key() TransactionKey {
	return TransactionKey{Week: r.WeekEndDate, StoreID: r.StoreID, ProductID: r.ProductID}
}

// PairKey returns the (store, product) key used for price imputation
func (r TransactionRecord) PairKey() StoreProductKey {
	return StoreProductKey{StoreID: r.StoreID, ProductID: r.ProductID}
}

// HasPrice reports whether the base price was observed
func (r TransactionRecord) HasPrice() bool {
	return r.BasePrice != nil
}

// StoreProductKey identifies a product carried by a store
type StoreProductKey struct {
	StoreID   int64
	ProductID int64
}
