package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandprep/pkg/contracts/domain"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		size    string
		want    float64
		wantErr bool
	}{
		{"14 OZ", 14, false},
		{"15.5 OZ", 15.5, false},
		{"  1000 ML", 1000, false},
		{"12", 12, false},
		{"LARGE", 0, true},
		{"", 0, true},
		{"OZ 12", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			got, err := ParseSize(tt.size)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBinSize_RightInclusive(t *testing.T) {
	edges := SizeBins[domain.CategoryColdCereal]

	tests := []struct {
		value  float64
		want   int
		wantOK bool
	}{
		{10, 0, false},
		{10.01, 1, true},
		{13, 1, true},
		{13.5, 2, true},
		{16, 2, true},
		{21, 3, true},
		{21.1, 0, false},
		{5, 0, false},
	}

	for _, tt := range tests {
		label, ok := BinSize(edges, tt.value)
		assert.Equal(t, tt.wantOK, ok, "value %v", tt.value)
		assert.Equal(t, tt.want, label, "value %v", tt.value)
	}
}

func TestCategoryBin(t *testing.T) {
	label, ok, known := CategoryBin(domain.CategoryBagSnacks, 14)
	assert.True(t, known)
	assert.True(t, ok)
	assert.Equal(t, 1, label)

	label, ok, known = CategoryBin(domain.CategoryOralHygiene, 750)
	assert.True(t, known && ok)
	assert.Equal(t, 2, label)

	label, ok, known = CategoryBin(domain.CategoryFrozenPizza, 32)
	assert.True(t, known && ok)
	assert.Equal(t, 3, label)

	_, ok, known = CategoryBin("SOFT DRINKS", 12)
	assert.False(t, known)
	assert.False(t, ok)
}

// Every value inside a scheme's outer edges lands in exactly one bin.
func TestSizeBins_TotalAndDisjoint(t *testing.T) {
	for category, edges := range SizeBins {
		lo, hi := edges[0], edges[len(edges)-1]
		for v := lo + 0.25; v <= hi; v += 0.25 {
			hits := 0
			for k := 1; k < len(edges); k++ {
				if v > edges[k-1] && v <= edges[k] {
					hits++
				}
			}
			assert.Equal(t, 1, hits, "%s value %v", category, v)

			_, ok := BinSize(edges, v)
			assert.True(t, ok, "%s value %v", category, v)
		}
	}
}
