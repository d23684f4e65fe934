package dataprocessing

import (
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"demandprep/pkg/contracts/domain"
)

// ProfileReport describes the input tables before any cleaning
type ProfileReport struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Tables       []TableProfile     `json:"tables"`
	Transactions TransactionProfile `json:"transactions"`
	Products     ProductProfile     `json:"products"`
	Stores       StoreProfile       `json:"stores"`
	References   Orphans            `json:"references"`
}

// TableProfile holds per-column null and distinct counts of one table
type TableProfile struct {
	Name    string          `json:"name"`
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// ColumnProfile summarizes one column
type ColumnProfile struct {
	Name     string          `json:"name"`
	Nulls    int             `json:"nulls"`
	Distinct int             `json:"distinct"`
	Numeric  *NumericSummary `json:"numeric,omitempty"`
}

// NumericSummary mirrors a describe() of a numeric column
type NumericSummary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"p25"`
	P50   float64 `json:"p50"`
	P75   float64 `json:"p75"`
	Max   float64 `json:"max"`
}

// TransactionProfile covers the time axis and key structure of transactions
type TransactionProfile struct {
	FirstWeek        string         `json:"first_week,omitempty"`
	LastWeek         string         `json:"last_week,omitempty"`
	DistinctWeeks    int            `json:"distinct_weeks"`
	ExpectedWeeks    int            `json:"expected_weeks"`
	MissingWeeks     []string       `json:"missing_weeks"`
	Weekdays         map[string]int `json:"weekdays"`
	DistinctStores   int            `json:"distinct_stores"`
	DistinctProducts int            `json:"distinct_products"`
	Coverage         float64        `json:"coverage"`
	DuplicateKeys    int            `json:"duplicate_keys"`
	ZeroUnitRows     int            `json:"zero_unit_rows"`
	AboveCeilingRows int            `json:"above_ceiling_rows"`
	UnitsCeiling     int            `json:"units_ceiling"`
	FeatureRate      float64        `json:"feature_rate"`
	DisplayRate      float64        `json:"display_rate"`
}

// ProductProfile lists the category structure of products
type ProductProfile struct {
	SizesByCategory         map[string][]string `json:"sizes_by_category"`
	SubCategoriesByCategory map[string][]string `json:"sub_categories_by_category"`
}

// StoreProfile covers geography and store size
type StoreProfile struct {
	StoresByState map[string]int `json:"stores_by_state"`
	// ParkingAreaCorrelation is the Pearson correlation of parking spaces and
	// sales area over stores with both; nil with fewer than two such stores
	ParkingAreaCorrelation *float64 `json:"parking_area_correlation,omitempty"`
}

// Profiler computes a ProfileReport
type Profiler struct {
	unitsCeiling int
	logger       *slog.Logger
	now          func() time.Time
}

// NewProfiler creates a profiler counting rows above unitsCeiling
func NewProfiler(unitsCeiling int, logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{
		unitsCeiling: unitsCeiling,
		logger:       logger.With(slog.String("component", "profiler")),
		now:          time.Now,
	}
}

// Profile describes ds without modifying it
func (p *Profiler) Profile(ds *Dataset) *ProfileReport {
	report := &ProfileReport{
		GeneratedAt: p.now().UTC(),
		Tables: []TableProfile{
			profileTransactionColumns(ds.Transactions),
			profileProductColumns(ds.Products),
			profileStoreColumns(ds.Stores),
		},
		Transactions: p.profileTransactions(ds.Transactions),
		Products:     profileProducts(ds.Products),
		Stores:       profileStores(ds.Stores),
		References:   FindOrphans(ds.Transactions, ds.Products, ds.Stores),
	}

	p.logger.Info("Dataset profiled",
		slog.Int("distinct_weeks", report.Transactions.DistinctWeeks),
		slog.Int("missing_weeks", len(report.Transactions.MissingWeeks)),
		slog.Int("duplicate_keys", report.Transactions.DuplicateKeys),
		slog.Float64("coverage", report.Transactions.Coverage),
		slog.Int("orphan_products", len(report.References.ProductIDs)),
		slog.Int("orphan_stores", len(report.References.StoreIDs)))

	return report
}

func (p *Profiler) profileTransactions(records []domain.TransactionRecord) TransactionProfile {
	tp := TransactionProfile{
		MissingWeeks: []string{},
		Weekdays:     make(map[string]int),
		UnitsCeiling: p.unitsCeiling,
	}
	if len(records) == 0 {
		return tp
	}

	weeks := make(map[time.Time]struct{})
	stores := make(map[int64]struct{})
	products := make(map[int64]struct{})
	keys := make(map[domain.TransactionKey]struct{}, len(records))
	var featured, displayed int

	for _, rec := range records {
		weeks[rec.WeekEndDate] = struct{}{}
		stores[rec.StoreID] = struct{}{}
		products[rec.ProductID] = struct{}{}
		keys[rec.Key()] = struct{}{}
		tp.Weekdays[rec.WeekEndDate.Weekday().String()]++

		if rec.Units == 0 {
			tp.ZeroUnitRows++
		}
		if rec.Units > int64(p.unitsCeiling) {
			tp.AboveCeilingRows++
		}
		if rec.OnFeature {
			featured++
		}
		if rec.OnDisplay {
			displayed++
		}
	}

	sortedWeeks := make([]time.Time, 0, len(weeks))
	for w := range weeks {
		sortedWeeks = append(sortedWeeks, w)
	}
	sort.Slice(sortedWeeks, func(i, j int) bool { return sortedWeeks[i].Before(sortedWeeks[j]) })

	first, last := sortedWeeks[0], sortedWeeks[len(sortedWeeks)-1]
	tp.FirstWeek = first.Format(DateLayout)
	tp.LastWeek = last.Format(DateLayout)
	tp.DistinctWeeks = len(weeks)
	tp.ExpectedWeeks = int(last.Sub(first).Hours()/(24*7)) + 1
	for w := first; !w.After(last); w = w.AddDate(0, 0, 7) {
		if _, ok := weeks[w]; !ok {
			tp.MissingWeeks = append(tp.MissingWeeks, w.Format(DateLayout))
		}
	}

	tp.DistinctStores = len(stores)
	tp.DistinctProducts = len(products)
	tp.DuplicateKeys = len(records) - len(keys)
	cells := float64(len(weeks)) * float64(len(stores)) * float64(len(products))
	tp.Coverage = float64(len(records)) / cells
	tp.FeatureRate = float64(featured) / float64(len(records))
	tp.DisplayRate = float64(displayed) / float64(len(records))

	return tp
}

func profileProducts(products []domain.Product) ProductProfile {
	sizes := make(map[string]map[string]struct{})
	subs := make(map[string]map[string]struct{})
	for _, prod := range products {
		addToSet(sizes, prod.Category, prod.Size)
		addToSet(subs, prod.Category, prod.SubCategory)
	}
	return ProductProfile{
		SizesByCategory:         flattenSets(sizes),
		SubCategoriesByCategory: flattenSets(subs),
	}
}

func profileStores(stores []domain.Store) StoreProfile {
	sp := StoreProfile{StoresByState: make(map[string]int)}
	var parking, area []float64
	for _, s := range stores {
		sp.StoresByState[s.State]++
		if s.ParkingSpaces != nil {
			parking = append(parking, *s.ParkingSpaces)
			area = append(area, s.SalesAreaSqFt)
		}
	}
	if len(parking) >= 2 {
		r := stat.Correlation(parking, area, nil)
		if !math.IsNaN(r) {
			sp.ParkingAreaCorrelation = &r
		}
	}
	return sp
}

// Summarize computes a NumericSummary of values; nil when values is empty
func Summarize(values []float64) *NumericSummary {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s := &NumericSummary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		P25:   quantile(sorted, 0.25),
		P50:   quantile(sorted, 0.5),
		P75:   quantile(sorted, 0.75),
	}
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

// quantile interpolates linearly between the order statistics around
// position (n-1)*p of sorted, the way pandas describe() does. gonum's
// stat.Quantile has no method with this definition.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

// columnStats accumulates one column of a table profile
type columnStats struct {
	name     string
	nulls    int
	distinct map[string]struct{}
	numeric  []float64
	isNum    bool
}

func newColumnStats(name string, numeric bool) *columnStats {
	return &columnStats{name: name, distinct: make(map[string]struct{}), isNum: numeric}
}

func (c *columnStats) add(value string) {
	if value == "" {
		c.nulls++
		return
	}
	c.distinct[value] = struct{}{}
}

func (c *columnStats) addNumber(f float64) {
	c.add(formatFloat(f))
	c.numeric = append(c.numeric, f)
}

func (c *columnStats) profile() ColumnProfile {
	cp := ColumnProfile{Name: c.name, Nulls: c.nulls, Distinct: len(c.distinct)}
	if c.isNum {
		cp.Numeric = Summarize(c.numeric)
	}
	return cp
}

func buildTableProfile(name string, rows int, cols []*columnStats) TableProfile {
	tp := TableProfile{Name: name, Rows: rows, Columns: make([]ColumnProfile, len(cols))}
	for i, c := range cols {
		tp.Columns[i] = c.profile()
	}
	return tp
}

func profileTransactionColumns(records []domain.TransactionRecord) TableProfile {
	week := newColumnStats(domain.ColWeekEndDate, false)
	store := newColumnStats(domain.ColStoreNum, false)
	upc := newColumnStats(domain.ColUPC, false)
	price := newColumnStats(domain.ColBasePrice, true)
	display := newColumnStats(domain.ColDisplay, true)
	feature := newColumnStats(domain.ColFeature, true)
	units := newColumnStats(domain.ColUnits, true)

	for _, rec := range records {
		week.add(rec.WeekEndDate.Format(DateLayout))
		store.add(strconv.FormatInt(rec.StoreID, 10))
		upc.add(strconv.FormatInt(rec.ProductID, 10))
		if rec.HasPrice() {
			price.addNumber(*rec.BasePrice)
		} else {
			price.add("")
		}
		display.addNumber(boolToFloat(rec.OnDisplay))
		feature.addNumber(boolToFloat(rec.OnFeature))
		units.addNumber(float64(rec.Units))
	}

	return buildTableProfile(TableTransactions, len(records),
		[]*columnStats{week, store, upc, price, display, feature, units})
}

func profileProductColumns(products []domain.Product) TableProfile {
	upc := newColumnStats(domain.ColProductUPC, false)
	desc := newColumnStats(domain.ColDescription, false)
	manufacturer := newColumnStats(domain.ColManufacturer, false)
	category := newColumnStats(domain.ColCategory, false)
	sub := newColumnStats(domain.ColSubCategory, false)
	size := newColumnStats(domain.ColProductSize, true)

	for _, prod := range products {
		upc.add(strconv.FormatInt(prod.ProductID, 10))
		desc.add(prod.Description)
		manufacturer.add(prod.Manufacturer)
		category.add(prod.Category)
		sub.add(prod.SubCategory)
		// distinct counts use the raw size string, the summary its number
		size.add(prod.Size)
		if v, err := ParseSize(prod.Size); err == nil {
			size.numeric = append(size.numeric, v)
		}
	}

	return buildTableProfile(TableProducts, len(products),
		[]*columnStats{upc, desc, manufacturer, category, sub, size})
}

func profileStoreColumns(stores []domain.Store) TableProfile {
	id := newColumnStats(domain.ColStoreID, false)
	name := newColumnStats(domain.ColStoreName, false)
	city := newColumnStats(domain.ColCity, false)
	state := newColumnStats(domain.ColState, false)
	msa := newColumnStats(domain.ColMSA, false)
	segment := newColumnStats(domain.ColSegment, false)
	parking := newColumnStats(domain.ColParkingSpaces, true)
	area := newColumnStats(domain.ColSalesArea, true)
	baskets := newColumnStats(domain.ColAvgWeeklyBaskets, true)

	for _, s := range stores {
		id.add(strconv.FormatInt(s.StoreID, 10))
		name.add(s.Name)
		city.add(s.City)
		state.add(s.State)
		msa.add(s.MSA)
		segment.add(string(s.Segment))
		if s.ParkingSpaces != nil {
			parking.addNumber(*s.ParkingSpaces)
		} else {
			parking.add("")
		}
		area.addNumber(s.SalesAreaSqFt)
		baskets.addNumber(s.AvgWeeklyBaskets)
	}

	return buildTableProfile(TableStores, len(stores),
		[]*columnStats{id, name, city, state, msa, segment, parking, area, baskets})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func addToSet(sets map[string]map[string]struct{}, key, value string) {
	set, ok := sets[key]
	if !ok {
		set = make(map[string]struct{})
		sets[key] = set
	}
	set[value] = struct{}{}
}

func flattenSets(sets map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(sets))
	for key, set := range sets {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[key] = values
	}
	return out
}
