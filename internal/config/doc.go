// Package config provides configuration management for the preprocessing
// pipeline. It loads settings from several sources, validates them, and
// resolves the file paths every step reads from or writes to.
//
// # Configuration Sources
//
// Sources are applied in order, later ones overriding earlier ones:
//
//	1. Default values
//	2. A YAML file (config.yaml, configs/config.yaml or an explicit path)
//	3. A .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern DEMANDPREP_<SECTION>_<FIELD>:
//
//	DEMANDPREP_INPUT_DIR=data
//	DEMANDPREP_OUTPUT_WORKBOOK=true
//	DEMANDPREP_PIPELINE_UNITS_CEILING=750
//	DEMANDPREP_PIPELINE_REFERENCE_POLICY=tolerate
//	DEMANDPREP_PIPELINE_PROFILE=true
//	DEMANDPREP_LOGGING_LEVEL=debug
//	DEMANDPREP_TELEMETRY_METRICS_EXPORTER=prometheus
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.Paths()
//
// # Testing
//
// Default() returns a configuration that validates without any environment
// variables or files.
package config
