package dataprocessing

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"demandprep/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func price(v float64) *float64 {
	return &v
}

func week(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tx(w string, store, product int64, p *float64, units int64) domain.TransactionRecord {
	return domain.TransactionRecord{
		WeekEndDate: week(w),
		StoreID:     store,
		ProductID:   product,
		BasePrice:   p,
		Units:       units,
	}
}

const transactionsCSV = `WEEK_END_DATE,STORE_NUM,UPC,BASE_PRICE,DISPLAY,FEATURE,UNITS
14-Jan-09,367,1111009477,1.57,0,0,13
14-Jan-09,367,1111009497,NA,1,0,20
21-Jan-09,367,1111009477,1.39,0,1,0
`

const productsCSV = `UPC,DESCRIPTION,MANUFACTURER,CATEGORY,SUB_CATEGORY,PRODUCT_SIZE
1111009477,PL MINI TWIST PRETZELS,PRIVATE LABEL,BAG SNACKS,PRETZELS,15 OZ
1111009497,PL PRETZEL STICKS,PRIVATE LABEL,BAG SNACKS,PRETZELS,15 OZ
`

const storesCSV = `STORE_ID,STORE_NAME,ADDRESS_CITY_NAME,ADDRESS_STATE_PROV_CODE,MSA_CODE,SEG_VALUE_NAME,PARKING_SPACE_QTY,SALES_AREA_SIZE_NUM,AVG_WEEKLY_BASKETS
367,15TH & MADISON,COVINGTON,KY,17140,VALUE,196,24721,12706.53
389,SILVERLAKE,ERLANGER,KY,17140,MAINSTREAM,408,46073,24767.38
`
