package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg == nil {
		t.Fatal("NewDefaultConfig returned nil")
	}

	// Check database defaults
	if cfg.Database.Path != "" {
		t.Errorf("expected empty database path (default location), got %q", cfg.Database.Path)
	}

	// Check logging defaults
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.Logging.Level)
	}
	if cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("expected log format %q, got %q", DefaultLogFormat, cfg.Logging.Format)
	}

	// Check sync defaults
	if cfg.Sync.BatchSize != DefaultSyncBatchSize {
		t.Errorf("expected batch size %d, got %d", DefaultSyncBatchSize, cfg.Sync.BatchSize)
	}

	// Check connectivity defaults
	if len(cfg.Connectivity.Endpoints) != len(DefaultConnectivityEndpoints) {
		t.Errorf("expected %d endpoints, got %d", len(DefaultConnectivityEndpoints), len(cfg.Connectivity.Endpoints))
	}
	if cfg.Connectivity.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("expected probe timeout %v, got %v", DefaultProbeTimeout, cfg.Connectivity.ProbeTimeout)
	}
	if cfg.Connectivity.ForceOffline {
		t.Error("expected force_offline to be disabled by default")
	}

	// Check import defaults
	if cfg.Import.DebounceDelay != DefaultImportDebounce {
		t.Errorf("expected debounce delay %v, got %v", DefaultImportDebounce, cfg.Import.DebounceDelay)
	}

	// Check tracing defaults
	if cfg.Tracing.Enabled {
		t.Error("expected tracing to be disabled by default")
	}
	if cfg.Tracing.ExporterType != DefaultTracingExporterType {
		t.Errorf("expected exporter type %q, got %q", DefaultTracingExporterType, cfg.Tracing.ExporterType)
	}
	if cfg.Tracing.ServiceName != DefaultTracingServiceName {
		t.Errorf("expected service name %q, got %q", DefaultTracingServiceName, cfg.Tracing.ServiceName)
	}
}

func TestConfig_Validate_DefaultIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid debug level",
			config:  LoggingConfig{Level: "debug", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid info level",
			config:  LoggingConfig{Level: "info", Format: "text"},
			wantErr: false,
		},
		{
			name:    "valid warn level",
			config:  LoggingConfig{Level: "warn", Format: "json"},
			wantErr: false,
		},
		{
			name:    "valid error level",
			config:  LoggingConfig{Level: "error", Format: "text"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  LoggingConfig{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid log format",
			config:  LoggingConfig{Level: "info", Format: "invalid"},
			wantErr: true,
		},
		{
			name:    "empty values are valid",
			config:  LoggingConfig{Level: "", Format: ""},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSyncConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  SyncConfig
		wantErr bool
	}{
		{
			name:    "valid batch size",
			config:  SyncConfig{BatchSize: 50},
			wantErr: false,
		},
		{
			name:    "zero batch size is invalid",
			config:  SyncConfig{BatchSize: 0},
			wantErr: true,
		},
		{
			name:    "negative batch size is invalid",
			config:  SyncConfig{BatchSize: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectivityConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ConnectivityConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  ConnectivityConfig{Endpoints: []string{"1.1.1.1:443"}, ProbeTimeout: 2 * time.Second, CacheTTL: 30 * time.Second},
			wantErr: false,
		},
		{
			name:    "zero values are valid (defaults apply)",
			config:  ConnectivityConfig{},
			wantErr: false,
		},
		{
			name:    "negative probe timeout is invalid",
			config:  ConnectivityConfig{ProbeTimeout: -1 * time.Second},
			wantErr: true,
		},
		{
			name:    "negative cache ttl is invalid",
			config:  ConnectivityConfig{CacheTTL: -1 * time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  TracingConfig
		wantErr bool
	}{
		{
			name:    "disabled config is valid",
			config:  TracingConfig{Enabled: false},
			wantErr: false,
		},
		{
			name:    "valid stdout exporter",
			config:  TracingConfig{Enabled: true, ExporterType: "stdout", SampleRate: 1.0, ServiceName: "markkeep"},
			wantErr: false,
		},
		{
			name:    "otlp without endpoint is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "otlp", SampleRate: 1.0, ServiceName: "markkeep"},
			wantErr: true,
		},
		{
			name:    "otlp with endpoint is valid",
			config:  TracingConfig{Enabled: true, ExporterType: "otlp", OTLPEndpoint: "localhost:4318", SampleRate: 0.5, ServiceName: "markkeep"},
			wantErr: false,
		},
		{
			name:    "invalid exporter type",
			config:  TracingConfig{Enabled: true, ExporterType: "jaeger", SampleRate: 1.0, ServiceName: "markkeep"},
			wantErr: true,
		},
		{
			name:    "sample rate above 1 is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "stdout", SampleRate: 1.5, ServiceName: "markkeep"},
			wantErr: true,
		},
		{
			name:    "missing service name is invalid",
			config:  TracingConfig{Enabled: true, ExporterType: "stdout", SampleRate: 1.0, ServiceName: ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "invalid", // Invalid: not a valid level
			Format: "text",
		},
		Sync: SyncConfig{
			BatchSize: 0, // Invalid: not positive
		},
		Connectivity: ConnectivityConfig{
			ProbeTimeout: -1 * time.Second, // Invalid: negative
		},
		Tracing: TracingConfig{
			Enabled:      true,
			ExporterType: "otlp", // Invalid: no endpoint
			SampleRate:   2.0,    // Invalid: above 1.0
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("expected validation error, got nil")
	}
}

func TestLoader_LoadMissingFileReturnsDefaults(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sync.BatchSize != DefaultSyncBatchSize {
		t.Errorf("expected default batch size %d, got %d", DefaultSyncBatchSize, cfg.Sync.BatchSize)
	}
}

func TestLoader_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	cfg := NewDefaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Sync.BatchSize = 25
	cfg.Connectivity.ForceOffline = true
	cfg.Database.Path = filepath.Join(dir, "custom.db")

	if err := loader.Save(cfg, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", loaded.Logging.Level, "debug")
	}
	if loaded.Sync.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", loaded.Sync.BatchSize)
	}
	if !loaded.Connectivity.ForceOffline {
		t.Error("ForceOffline = false, want true")
	}
	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Database.Path = %q, want %q", loaded.Database.Path, cfg.Database.Path)
	}
}

func TestLoader_LoadFromFile_Missing(t *testing.T) {
	loader, err := NewLoader(t.TempDir())
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	if _, err := loader.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFromFile() expected error for missing file, got nil")
	}
}

func TestLoader_DefaultConfigPath(t *testing.T) {
	loader, err := NewLoader("/tmp/markkeep-test")
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}

	want := filepath.Join("/tmp/markkeep-test", "config.yaml")
	if got := loader.DefaultConfigPath(); got != want {
		t.Errorf("DefaultConfigPath() = %q, want %q", got, want)
	}
	if loader.ConfigDir() != "/tmp/markkeep-test" {
		t.Errorf("ConfigDir() = %q, want %q", loader.ConfigDir(), "/tmp/markkeep-test")
	}
}
