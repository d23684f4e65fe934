package domain

// Input column names of the store table
const (
	ColStoreID          = "STORE_ID"
	ColStoreName        = "STORE_NAME"
	ColCity             = "ADDRESS_CITY_NAME"
	ColState            = "ADDRESS_STATE_PROV_CODE"
	ColMSA              = "MSA_CODE"
	ColSegment          = "SEG_VALUE_NAME"
	ColParkingSpaces    = "PARKING_SPACE_QTY"
	ColSalesArea        = "SALES_AREA_SIZE_NUM"
	ColAvgWeeklyBaskets = "AVG_WEEKLY_BASKETS"
)

// Segment is a store's market positioning tier
type Segment string

const (
	SegmentValue      Segment = "VALUE"
	SegmentMainstream Segment = "MAINSTREAM"
	SegmentUpscale    Segment = "UPSCALE"
)

// Store represents a row of the store attribute table
type Store struct {
	StoreID          int64    `json:"store_id" csv:"STORE_ID" validate:"gt=0"`
	Name             string   `json:"name" csv:"STORE_NAME"`
	City             string   `json:"city" csv:"ADDRESS_CITY_NAME"`
	State            string   `json:"state" csv:"ADDRESS_STATE_PROV_CODE" validate:"required"`
	MSA              string   `json:"msa" csv:"MSA_CODE" validate:"required"`
	Segment          Segment  `json:"segment" csv:"SEG_VALUE_NAME"`
	ParkingSpaces    *float64 `json:"parking_spaces,omitempty" csv:"PARKING_SPACE_QTY" validate:"omitempty,gte=0"`
	SalesAreaSqFt    float64  `json:"sales_area_sqft" csv:"SALES_AREA_SIZE_NUM" validate:"gte=0"`
	AvgWeeklyBaskets float64  `json:"avg_weekly_baskets" csv:"AVG_WEEKLY_BASKETS" validate:"gte=0"`
}
