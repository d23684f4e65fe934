// Package app wires a pipeline run: configuration, logging, telemetry and
// the operations manager for the selected mode.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml, .env and the environment
//	2. Apply command-line directory overrides and resolve paths
//	3. Initialize logging and OpenTelemetry
//	4. Register the steps of the selected mode
//
// Run executes the steps once; Shutdown flushes telemetry. The binaries in
// cmd/ are thin wrappers around this package.
package app
