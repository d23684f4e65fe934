// Package shared holds helpers used across the preprocessing packages that
// belong to no single layer.
//
// The testutil subpackage captures slog output so tests can assert on what
// a component logged:
//
//	logger, handler := testutil.NewTestLogger(t)
//	encoder := dataprocessing.NewProductEncoder(logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelWarn, "No size bins")
package shared
