// Package config provides configuration structs and utilities for the markkeep application.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents the root configuration for the markkeep application.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Logging      LoggingConfig      `yaml:"logging"`
	Sync         SyncConfig         `yaml:"sync"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Import       ImportConfig       `yaml:"import"`
	Tracing      TracingConfig      `yaml:"tracing"`
}

// DatabaseConfig holds configuration for the local SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"` // Empty means ~/.markkeep/markkeep.db
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// SyncConfig holds configuration for synchronization passes.
type SyncConfig struct {
	// BatchSize is reserved for future chunked transmission; the current
	// transport receives each pass as a single batch.
	BatchSize int `yaml:"batch_size"`
}

// ConnectivityConfig holds configuration for the network probe that gates
// sync passes.
type ConnectivityConfig struct {
	Endpoints    []string      `yaml:"endpoints"`     // TCP endpoints to dial
	ProbeTimeout time.Duration `yaml:"probe_timeout"` // Per-endpoint dial timeout
	CacheTTL     time.Duration `yaml:"cache_ttl"`     // How long a probe result is reused
	ForceOffline bool          `yaml:"force_offline"` // Report offline without probing
}

// ImportConfig holds configuration for bookmark export-file imports.
type ImportConfig struct {
	WatchDir      string        `yaml:"watch_dir"`      // Directory watched by `mk import --watch`
	DebounceDelay time.Duration `yaml:"debounce_delay"` // Quiet period before a changed file is imported
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`       // Whether tracing is enabled
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // OTLP collector endpoint
	SampleRate   float64 `yaml:"sample_rate"`   // Sampling rate (0.0 to 1.0)
	ServiceName  string  `yaml:"service_name"`  // Service name for traces
}

// Default configuration values.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	// Sync defaults
	DefaultSyncBatchSize = 50

	// Connectivity defaults
	DefaultProbeTimeout = 2 * time.Second
	DefaultCacheTTL     = 30 * time.Second

	// Import defaults
	DefaultImportDebounce = 500 * time.Millisecond

	// Tracing defaults
	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "markkeep"
)

// DefaultConnectivityEndpoints are the probe targets used when none are
// configured.
var DefaultConnectivityEndpoints = []string{
	"1.1.1.1:443",
	"8.8.8.8:53",
}

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Sync: SyncConfig{
			BatchSize: DefaultSyncBatchSize,
		},
		Connectivity: ConnectivityConfig{
			Endpoints:    append([]string(nil), DefaultConnectivityEndpoints...),
			ProbeTimeout: DefaultProbeTimeout,
			CacheTTL:     DefaultCacheTTL,
			ForceOffline: false,
		},
		Import: ImportConfig{
			DebounceDelay: DefaultImportDebounce,
		},
		Tracing: TracingConfig{
			Enabled:      DefaultTracingEnabled,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	// Validate sync config
	if err := c.Sync.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}

	// Validate connectivity config
	if err := c.Connectivity.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("connectivity: %w", err))
	}

	// Validate import config
	if err := c.Import.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("import: %w", err))
	}

	// Validate tracing config
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the SyncConfig is valid.
func (s *SyncConfig) Validate() error {
	if s.BatchSize <= 0 {
		return errors.New("batch_size must be positive")
	}
	return nil
}

// Validate checks if the ConnectivityConfig is valid.
func (c *ConnectivityConfig) Validate() error {
	var errs []error

	if c.ProbeTimeout < 0 {
		errs = append(errs, errors.New("probe_timeout must be non-negative"))
	}

	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cache_ttl must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the ImportConfig is valid.
func (i *ImportConfig) Validate() error {
	if i.DebounceDelay < 0 {
		return errors.New("debounce_delay must be non-negative")
	}
	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
			errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
