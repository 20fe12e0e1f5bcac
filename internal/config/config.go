// Package config loads and validates bundle-analyzer settings from config
// file, environment variables, and defaults.
package config

import "errors"

// Config is the top-level configuration struct for bundle-analyzer.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Report    ReportConfig    `mapstructure:"report"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AnalysisConfig holds pipeline settings.
type AnalysisConfig struct {
	BundleDir     string   `mapstructure:"bundle_dir"`
	ExcludeAssets []string `mapstructure:"exclude_assets"`
	Compression   string   `mapstructure:"compression"`
}

// ReportConfig holds output settings.
type ReportConfig struct {
	Format string `mapstructure:"format"`
	Title  string `mapstructure:"title"`
}

// ServerConfig holds live server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings. An empty endpoint
// disables export entirely.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Defaults applied before file and environment lookup.
const (
	DefaultCompression = "gzip"
	DefaultFormat      = "html"
	DefaultTitle       = "Bundle Analysis"
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8888
	DefaultLogLevel    = "info"
	DefaultLogJSON     = false
)

const maxPort = 65535

// Sentinel errors for configuration validation.
var (
	// ErrInvalidCompression indicates an unsupported compression algorithm.
	ErrInvalidCompression = errors.New("analysis.compression must be gzip or lz4")
	// ErrInvalidFormat indicates an unsupported report format.
	ErrInvalidFormat = errors.New("report.format must be html, json, or yaml")
	// ErrInvalidPort indicates the server port is out of range.
	ErrInvalidPort = errors.New("server.port must be between 1 and 65535")
	// ErrInvalidLogLevel indicates an unsupported log level.
	ErrInvalidLogLevel = errors.New("log.level must be debug, info, warn, or error")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	switch c.Analysis.Compression {
	case "gzip", "lz4":
	default:
		return ErrInvalidCompression
	}

	switch c.Report.Format {
	case "html", "json", "yaml":
	default:
		return ErrInvalidFormat
	}

	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return ErrInvalidPort
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
