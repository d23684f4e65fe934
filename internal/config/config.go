package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "demandprep/internal/errors"
)

// EnvPrefix namespaces all environment variables, e.g. DEMANDPREP_PIPELINE_PROFILE
const EnvPrefix = "DEMANDPREP"

// ReferencePolicy decides what happens to transactions whose product or
// store id has no attribute row
type ReferencePolicy string

const (
	// ReferenceReject fails the run on the first orphan id
	ReferenceReject ReferencePolicy = "reject"
	// ReferenceTolerate logs orphans and keeps the rows
	ReferenceTolerate ReferencePolicy = "tolerate"
)

// Config represents the complete application configuration.
// Fields carry no envconfig defaults: values come from Default(), then the
// YAML file, then the environment, each layer overriding the previous one.
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig locates the three source tables
type InputConfig struct {
	Dir              string `yaml:"dir" envconfig:"DIR"`
	TransactionsFile string `yaml:"transactions_file" envconfig:"TRANSACTIONS_FILE"`
	ProductsFile     string `yaml:"products_file" envconfig:"PRODUCTS_FILE"`
	StoresFile       string `yaml:"stores_file" envconfig:"STORES_FILE"`
	// Sheet is the worksheet read from .xlsx inputs; empty means the first sheet
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// OutputConfig names the files written by the pipeline
type OutputConfig struct {
	Dir              string `yaml:"dir" envconfig:"DIR"`
	TransactionsFile string `yaml:"transactions_file" envconfig:"TRANSACTIONS_FILE"`
	ProductsFile     string `yaml:"products_file" envconfig:"PRODUCTS_FILE"`
	StoresFile       string `yaml:"stores_file" envconfig:"STORES_FILE"`
	WriteBOM         bool   `yaml:"write_bom" envconfig:"WRITE_BOM"`
	Workbook         bool   `yaml:"workbook" envconfig:"WORKBOOK"`
	WorkbookFile     string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	ProfileFile      string `yaml:"profile_file" envconfig:"PROFILE_FILE"`
}

// PipelineConfig tunes the preprocessing steps
type PipelineConfig struct {
	UnitsCeiling    int             `yaml:"units_ceiling" envconfig:"UNITS_CEILING"`
	ReferencePolicy ReferencePolicy `yaml:"reference_policy" envconfig:"REFERENCE_POLICY"`
	Profile         bool            `yaml:"profile" envconfig:"PROFILE"`
	StepTimeout     time.Duration   `yaml:"step_timeout" envconfig:"STEP_TIMEOUT"`
	MaxRetries      int             `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	RetryDelay      time.Duration   `yaml:"retry_delay" envconfig:"RETRY_DELAY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName     string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsExporter string `yaml:"metrics_exporter" envconfig:"METRICS_EXPORTER"`
	MetricsFile     string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and the environment. An empty path searches the usual
// locations for config.yaml.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv exports variables from an env file without overriding the
// ones already set
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Pipeline.ReferencePolicy = ReferencePolicy(strings.ToLower(string(c.Pipeline.ReferencePolicy)))
	c.Telemetry.TraceExporter = strings.ToLower(c.Telemetry.TraceExporter)
	c.Telemetry.MetricsExporter = strings.ToLower(c.Telemetry.MetricsExporter)

	// JSON is the only supported log format
	c.Logging.Format = "json"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Input.TransactionsFile == "" || c.Input.ProductsFile == "" || c.Input.StoresFile == "" {
		return apperrors.NewConfigError("all three input files must be named", nil)
	}

	if c.Output.TransactionsFile == "" || c.Output.ProductsFile == "" || c.Output.StoresFile == "" {
		return apperrors.NewConfigError("all three output files must be named", nil)
	}

	if c.Pipeline.UnitsCeiling <= 0 {
		return apperrors.NewConfigError(fmt.Sprintf("units ceiling must be positive, got %d", c.Pipeline.UnitsCeiling), nil).
			WithContext("field", "pipeline.units_ceiling")
	}

	switch c.Pipeline.ReferencePolicy {
	case ReferenceReject, ReferenceTolerate:
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown reference policy %q", c.Pipeline.ReferencePolicy), nil).
			WithContext("field", "pipeline.reference_policy")
	}

	if c.Pipeline.StepTimeout <= 0 {
		return apperrors.NewConfigError("step timeout must be positive", nil)
	}

	if c.Pipeline.MaxRetries < 0 {
		return apperrors.NewConfigError("max retries cannot be negative", nil)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown log level %q", c.Logging.Level), nil)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown log output %q", c.Logging.Output), nil)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return apperrors.NewConfigError("log file path required for file output", nil)
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown trace exporter %q", c.Telemetry.TraceExporter), nil)
	}

	switch c.Telemetry.MetricsExporter {
	case "none", "prometheus":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("unknown metrics exporter %q", c.Telemetry.MetricsExporter), nil)
	}

	if c.Telemetry.MetricsExporter == "prometheus" && c.Telemetry.MetricsFile == "" {
		return apperrors.NewConfigError("metrics file required for prometheus exporter", nil)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Dir:              DefaultInputDir,
			TransactionsFile: DefaultTransactionsInput,
			ProductsFile:     DefaultProductsInput,
			StoresFile:       DefaultStoresInput,
		},
		Output: OutputConfig{
			Dir:              DefaultOutputDir,
			TransactionsFile: DefaultTransactionsOutput,
			ProductsFile:     DefaultProductsOutput,
			StoresFile:       DefaultStoresOutput,
			WorkbookFile:     DefaultWorkbookOutput,
			ProfileFile:      DefaultProfileOutput,
		},
		Pipeline: PipelineConfig{
			UnitsCeiling:    DefaultUnitsCeiling,
			ReferencePolicy: ReferenceReject,
			StepTimeout:     DefaultStepTimeout,
			RetryDelay:      DefaultRetryDelay,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/demandprep.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:     AppName,
			TraceExporter:   "none",
			MetricsExporter: "none",
			MetricsFile:     DefaultMetricsFile,
		},
	}
}
