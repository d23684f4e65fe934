package config

import "time"

// Application constants
const (
	AppName    = "demandprep"
	AppVersion = "1.0.0"

	// Input file names (relative to the input directory)
	DefaultInputDir          = "data"
	DefaultTransactionsInput = "transaction_data.csv"
	DefaultProductsInput     = "product_data.csv"
	DefaultStoresInput       = "store_data.csv"

	// Output file names (relative to the output directory)
	DefaultOutputDir          = "output"
	DefaultTransactionsOutput = "updated_train_data.csv"
	DefaultProductsOutput     = "updated_product_data.csv"
	DefaultStoresOutput       = "updated_store_data.csv"
	DefaultWorkbookOutput     = "updated_data.xlsx"
	DefaultProfileOutput      = "profile.json"
	DefaultMetricsFile        = "demandprep.prom"

	// Cleaning
	DefaultUnitsCeiling = 750

	// Step execution
	DefaultStepTimeout = 5 * time.Minute
	DefaultRetryDelay  = time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
