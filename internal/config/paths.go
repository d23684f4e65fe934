package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds every resolved file location used by a run
type Paths struct {
	InputDir  string
	OutputDir string

	TransactionsInput string
	ProductsInput     string
	StoresInput       string

	TransactionsOutput string
	ProductsOutput     string
	StoresOutput       string
	WorkbookOutput     string
	ProfileOutput      string
	MetricsFile        string
	LogFile            string
}

// Paths resolves the configured file names to absolute paths. Relative
// directories are taken from the current working directory.
func (c *Config) Paths() (*Paths, error) {
	inDir, err := filepath.Abs(c.Input.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input dir: %w", err)
	}
	outDir, err := filepath.Abs(c.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	return &Paths{
		InputDir:           inDir,
		OutputDir:          outDir,
		TransactionsInput:  joinUnlessAbs(inDir, c.Input.TransactionsFile),
		ProductsInput:      joinUnlessAbs(inDir, c.Input.ProductsFile),
		StoresInput:        joinUnlessAbs(inDir, c.Input.StoresFile),
		TransactionsOutput: joinUnlessAbs(outDir, c.Output.TransactionsFile),
		ProductsOutput:     joinUnlessAbs(outDir, c.Output.ProductsFile),
		StoresOutput:       joinUnlessAbs(outDir, c.Output.StoresFile),
		WorkbookOutput:     joinUnlessAbs(outDir, c.Output.WorkbookFile),
		ProfileOutput:      joinUnlessAbs(outDir, c.Output.ProfileFile),
		MetricsFile:        joinUnlessAbs(outDir, c.Telemetry.MetricsFile),
		LogFile:            c.Logging.FilePath,
	}, nil
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (p *Paths) EnsureOutputDir() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.OutputDir, err)
	}
	return nil
}

// Inputs returns the three input paths in load order
func (p *Paths) Inputs() []string {
	return []string{p.TransactionsInput, p.ProductsInput, p.StoresInput}
}

func joinUnlessAbs(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
