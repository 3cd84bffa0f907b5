package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	apperrors "salesreport/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. SALES_LOGGING_LEVEL
const EnvPrefix = "SALES"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// InputConfig controls how sales sources are read
type InputConfig struct {
	// Delimiter is a single character, or "tab"
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER" validate:"required"`
	// Sheet selects the worksheet of .xlsx sources; empty means the first sheet
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// ReportConfig controls report formatting
type ReportConfig struct {
	CurrencySymbol string `yaml:"currency_symbol" envconfig:"CURRENCY_SYMBOL" validate:"max=8"`
	Locale         string `yaml:"locale" envconfig:"LOCALE" validate:"required"`
}

// ExportConfig controls report files written next to the printed output
type ExportConfig struct {
	Dir     string   `yaml:"dir" envconfig:"DIR"`
	Formats []string `yaml:"formats" envconfig:"FORMATS" validate:"dive,oneof=csv xlsx"`
	BOM     bool     `yaml:"bom" envconfig:"BOM"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
	// TraceFile receives finished spans; empty means stderr
	TraceFile string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	// MetricsFile, when set, receives the run's metrics in Prometheus text format
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "console",
			FilePath: "logs/salesreport.log",
		},
		Input: InputConfig{
			Delimiter: ",",
		},
		Report: ReportConfig{
			CurrencySymbol: "$",
			Locale:         "en-US",
		},
		Export: ExportConfig{
			Formats: []string{"csv"},
			BOM:     true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "salesreport",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// SALES_* environment variables, in increasing order of precedence.
// An empty path searches the usual locations and tolerates finding nothing.
func Load(path string) (*Config, error) {
	cfg := Default()

	configFile := path
	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", configFile)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and the values validator tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if _, err := c.Input.Comma(); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	if _, err := language.Parse(c.Report.Locale); err != nil {
		return apperrors.NewConfigError("config validation failed",
			fmt.Errorf("invalid report locale %q: %w", c.Report.Locale, err))
	}

	return nil
}

// Comma returns the field delimiter as a rune
func (i InputConfig) Comma() (rune, error) {
	if strings.EqualFold(i.Delimiter, "tab") || i.Delimiter == `\t` {
		return '\t', nil
	}
	runes := []rune(i.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", i.Delimiter)
	}
	if runes[0] == '"' || runes[0] == '\n' || runes[0] == '\r' {
		return 0, fmt.Errorf("delimiter %q is not allowed", i.Delimiter)
	}
	return runes[0], nil
}

// HasFormat reports whether reports should be exported in the given format
func (e ExportConfig) HasFormat(format string) bool {
	for _, f := range e.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"salesreport.yaml",
		"configs/salesreport.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}
