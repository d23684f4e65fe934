// Package dataprocessing turns the three raw retail input tables into model
// ready tables.
//
// # Components
//
//  1. Reader and parser: load CSV or xlsx files into typed records
//  2. Loader: reads the transactions, products and stores tables concurrently
//  3. Profiler: describes the raw dataset (coverage, nulls, orphans)
//  4. TransactionCleaner: drops degenerate rows and imputes missing prices
//  5. ProductEncoder and StoreEncoder: binning, ordinal and one-hot encoding
//
// # Data Flow
//
//	files → Loader → Dataset → TransactionCleaner → cleaned records
//	                        → ProductEncoder      → products table
//	                        → StoreEncoder        → stores table
//
// # Error Handling
//
// Malformed cells fail with an errors.ParseError naming the file, row and
// column. Cleaning and encoding failures use ImputationError and
// UnmappedLabelError from internal/errors.
package dataprocessing
