package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"demandprep/pkg/contracts/domain"
)

// SizeBins maps a category to the ascending edges of its size bins. Bin k
// (1-based) holds sizes in (edges[k-1], edges[k]].
var SizeBins = map[string][]float64{
	domain.CategoryColdCereal:  {10, 13, 16, 21},
	domain.CategoryOralHygiene: {0, 501, 1001},
	domain.CategoryFrozenPizza: {20, 25, 30, 35},
	domain.CategoryBagSnacks:   {9, 14, 20},
}

// ParseSize returns the leading number of a size string such as "14 OZ"
func ParseSize(size string) (float64, error) {
	fields := strings.Fields(size)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty size")
	}
	return strconv.ParseFloat(fields[0], 64)
}

// BinSize returns the 1-based bin label of value within edges. ok is false
// when the value lies outside every bin.
func BinSize(edges []float64, value float64) (label int, ok bool) {
	for k := 1; k < len(edges); k++ {
		if value > edges[k-1] && value <= edges[k] {
			return k, true
		}
	}
	return 0, false
}

// CategoryBin bins a size using the scheme of its category. known is false
// when the category has no scheme.
func CategoryBin(category string, value float64) (label int, ok bool, known bool) {
	edges, known := SizeBins[category]
	if !known {
		return 0, false, false
	}
	label, ok = BinSize(edges, value)
	return label, ok, true
}
