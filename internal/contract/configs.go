package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zeyadhassan/codepulse/schema"
)

// Default values for configuration.
const (
	DefaultComplexityThreshold = 10
	DefaultDuplicationMinLines = 5
	DefaultResultLimit         = 25
	MaxResultLimit             = 1000
	DefaultPrecision           = 1
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DefaultExcludes are applied before any user-provided exclude patterns.
var DefaultExcludes = []string{
	".git/", "node_modules/", "vendor/", "__pycache__/", ".venv/",
	"dist/", "build/", "out/", "target/", "bin/",
	"*.min.js", "*.d.ts",
}

// Config holds the runtime configuration for analysis and reporting.
// This struct is the "final, validated" config.
type Config struct {
	WorkspacePath string
	Paths         []string

	ComplexityThreshold int
	DuplicationMinLines int
	AutoRecord          bool

	Workers     int
	ResultLimit int
	Excludes    []string
	Explain     bool
	All         bool
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	MetricsFile string
	Width       int // Terminal width override (0 = auto-detect)
	Verbose     bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Paths []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Workspace           string `mapstructure:"workspace"`
	ComplexityThreshold int    `mapstructure:"complexity-threshold"`
	DuplicationMinLines int    `mapstructure:"duplication-threshold"`
	AutoRecord          bool   `mapstructure:"auto-record"`
	OutputFile          string `mapstructure:"output-file"`
	Workers             int    `mapstructure:"workers"`
	Exclude             string `mapstructure:"exclude"`
	Precision           int    `mapstructure:"precision"`
	Output              string `mapstructure:"output"`
	Width               int    `mapstructure:"width"`
	Verbose             bool   `mapstructure:"verbose"`
	StoreBackend        string `mapstructure:"store-backend"`
	StoreDBConnect      string `mapstructure:"store-db-connect"`
	Color               string `mapstructure:"color"`

	// --- Fields from subcommand flags ---
	Limit       int    `mapstructure:"limit"`
	Explain     bool   `mapstructure:"explain"`
	All         bool   `mapstructure:"all"`
	MetricsFile string `mapstructure:"metrics-file"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Excludes != nil {
		clone.Excludes = make([]string, len(c.Excludes))
		copy(clone.Excludes, c.Excludes)
	}
	if c.Paths != nil {
		clone.Paths = make([]string, len(c.Paths))
		copy(clone.Paths, c.Paths)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateAnalyzerInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveWorkspace(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the metrics store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateAnalyzerInputs checks the heuristic thresholds.
func validateAnalyzerInputs(cfg *Config, input *ConfigRawInput) error {
	if input.ComplexityThreshold <= 0 {
		return fmt.Errorf("complexity-threshold must be greater than 0 (received %d)", input.ComplexityThreshold)
	}
	cfg.ComplexityThreshold = input.ComplexityThreshold

	if input.DuplicationMinLines <= 0 {
		return fmt.Errorf("duplication-threshold must be greater than 0 (received %d)", input.DuplicationMinLines)
	}
	cfg.DuplicationMinLines = input.DuplicationMinLines
	cfg.AutoRecord = input.AutoRecord
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.MetricsFile = input.MetricsFile
	cfg.Explain = input.Explain
	cfg.All = input.All
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit < 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit cannot be negative or exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 4. Excludes Processing ---
	cfg.Excludes = append([]string{}, DefaultExcludes...)
	if input.Exclude != "" {
		for p := range strings.SplitSeq(input.Exclude, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.Excludes = append(cfg.Excludes, trimmed)
			}
		}
	}
	return nil
}

// resolveWorkspace resolves the workspace root used to normalize stored paths
// and the positional paths to analyze.
func resolveWorkspace(cfg *Config, input *ConfigRawInput) error {
	workspace := input.Workspace
	if workspace == "" {
		workspace = "."
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("cannot resolve workspace %q: %w", workspace, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("workspace %q does not exist: %w", workspace, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace %q is not a directory", workspace)
	}
	cfg.WorkspacePath = filepath.Clean(abs)

	cfg.Paths = nil
	for _, p := range input.Paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		cfg.Paths = append(cfg.Paths, p)
	}
	return nil
}
