package domain

// Input column names of the product table
const (
	ColProductUPC   = "UPC"
	ColDescription  = "DESCRIPTION"
	ColManufacturer = "MANUFACTURER"
	ColCategory     = "CATEGORY"
	ColSubCategory  = "SUB_CATEGORY"
	ColProductSize  = "PRODUCT_SIZE"
)

// Product categories with a size binning scheme
const (
	CategoryColdCereal  = "COLD CEREAL"
	CategoryOralHygiene = "ORAL HYGIENE PRODUCTS"
	CategoryFrozenPizza = "FROZEN PIZZA"
	CategoryBagSnacks   = "BAG SNACKS"
)

// Product represents a row of the product attribute table
type Product struct {
	ProductID    int64  `json:"product_id" csv:"UPC" validate:"gt=0"`
	Description  string `json:"description" csv:"DESCRIPTION"`
	Manufacturer string `json:"manufacturer" csv:"MANUFACTURER" validate:"required"`
	Category     string `json:"category" csv:"CATEGORY" validate:"required"`
	SubCategory  string `json:"sub_category" csv:"SUB_CATEGORY" validate:"required"`
	Size         string `json:"size" csv:"PRODUCT_SIZE" validate:"required"`
}
