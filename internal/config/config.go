// =============================================================================
// Text Info Extractor - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the application
// configuration file (config.yaml).
//
// CONFIGURATION SECTIONS:
//   1. Directories: batch input, output and archive locations
//   2. Logging: level and optional log file
//   3. Export: worksheet name, column width, download file name
//   4. Labels: label profile plus per-field overrides
//   5. Server: HTTP listen address, body limit, session lifetime
//   6. Validation: required fields and warning promotion
//
// A missing configuration file is not an error: every setting has a default.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
	"github.com/ginjaninja78/text-info-extractor/internal/validation"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned by the process command for *.txt files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is where generated workbooks and logs are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files after a successful batch.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveRetentionDays prunes archived inputs older than this many days.
	// 0 keeps everything.
	ArchiveRetentionDays int `yaml:"archive_retention_days"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file that receives a copy of every log line.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// OutputFileFormat names the batch workbook.
	// Placeholders: {uuid}, {timestamp}, {date}, {time}
	// Default: "信息提取结果_{timestamp}.xlsx"
	OutputFileFormat string `yaml:"output_file_format"`

	// MaxConcurrency is the maximum number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps a batch going when a single file fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	Export     ExportConfig     `yaml:"export"`
	Labels     LabelConfig      `yaml:"labels"`
	Server     ServerConfig     `yaml:"server"`
	Validation ValidationConfig `yaml:"validation"`
}

// ExportConfig controls the generated workbook.
type ExportConfig struct {
	// SheetName is the worksheet title. Default: "信息提取结果"
	SheetName string `yaml:"sheet_name"`

	// ColumnWidth is applied to every column. Default: 20
	ColumnWidth float64 `yaml:"column_width"`

	// DownloadName is the file name offered by the HTTP export.
	// Default: "信息提取累积结果.xlsx"
	DownloadName string `yaml:"download_name"`
}

// LabelConfig selects the label profile and optional per-field overrides.
type LabelConfig struct {
	// Profile is "full" (default) or "strict".
	Profile string `yaml:"profile"`

	// DisablePriceFallback turns the price fallback chain off. An empty
	// price_fallback list keeps the profile's chain, like every other list.
	DisablePriceFallback bool `yaml:"disable_price_fallback"`

	extractor.LabelSet `yaml:",inline"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	// ListenAddr default: ":8080"
	ListenAddr string `yaml:"listen_addr"`

	// MaxBodyBytes limits request bodies. Default: 65536
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// SessionTTL evicts sessions idle for longer than this. Default: 30m
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// ValidationConfig tunes the checks run on extracted records.
type ValidationConfig struct {
	// RequiredFields lists fields (key or header, e.g. "phone_number" or
	// "手机号") whose absence is reported.
	RequiredFields []string `yaml:"required_fields"`

	// TreatWarningsAsErrors promotes every warning to an error.
	TreatWarningsAsErrors bool `yaml:"treat_warnings_as_errors"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from a YAML file. A missing file yields the
// defaults.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func Load(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates configuration bytes.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	config, _ := Parse(nil)
	return config
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputFileFormat == "" {
		config.OutputFileFormat = "信息提取结果_{timestamp}.xlsx"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		continueOnError := true
		config.ContinueOnError = &continueOnError
	}

	if config.Export.SheetName == "" {
		config.Export.SheetName = "信息提取结果"
	}
	if config.Export.ColumnWidth == 0 {
		config.Export.ColumnWidth = 20
	}
	if config.Export.DownloadName == "" {
		config.Export.DownloadName = "信息提取累积结果.xlsx"
	}

	if config.Labels.Profile == "" {
		config.Labels.Profile = extractor.ProfileFull
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8080"
	}
	if config.Server.MaxBodyBytes == 0 {
		config.Server.MaxBodyBytes = 64 << 10
	}
	if config.Server.SessionTTL == 0 {
		config.Server.SessionTTL = 30 * time.Minute
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", config.LogLevel)
	}
	if config.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be positive, got %d", config.MaxConcurrency)
	}
	if config.ArchiveRetentionDays < 0 {
		return fmt.Errorf("archive_retention_days must not be negative")
	}
	if config.Export.ColumnWidth < 0 || config.Export.ColumnWidth > 255 {
		return fmt.Errorf("export.column_width must be between 0 and 255, got %v", config.Export.ColumnWidth)
	}
	if len([]rune(config.Export.SheetName)) > 31 {
		return fmt.Errorf("export.sheet_name must be at most 31 characters")
	}
	if config.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if config.Server.SessionTTL < 0 {
		return fmt.Errorf("server.session_ttl must be positive")
	}
	if _, err := config.LabelSet(); err != nil {
		return err
	}
	if _, err := config.Validator(); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// LabelSet resolves the configured profile and applies the overrides.
func (c *MainConfig) LabelSet() (extractor.LabelSet, error) {
	base, err := extractor.LabelsForProfile(c.Labels.Profile)
	if err != nil {
		return extractor.LabelSet{}, err
	}
	labels := base.Merge(c.Labels.LabelSet)
	if c.Labels.DisablePriceFallback {
		labels.PriceFallback = nil
	}
	if err := labels.Validate(); err != nil {
		return extractor.LabelSet{}, fmt.Errorf("labels: %w", err)
	}
	return labels, nil
}

// Extractor builds an extractor from the configured labels.
func (c *MainConfig) Extractor() (*extractor.Extractor, error) {
	labels, err := c.LabelSet()
	if err != nil {
		return nil, err
	}
	return extractor.New(labels), nil
}

// ShouldContinueOnError reports the effective continue_on_error setting.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// Validator builds the record validator from the validation section.
func (c *MainConfig) Validator() (*validation.Validator, error) {
	options := validation.ValidationOptions{
		TreatWarningsAsErrors: c.Validation.TreatWarningsAsErrors,
	}
	for _, name := range c.Validation.RequiredFields {
		f, ok := types.FieldForHeader(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("validation.required_fields: unknown field %q", name)
		}
		options.RequiredFields = append(options.RequiredFields, f)
	}
	return validation.NewValidatorWithOptions(options), nil
}
