// Package observability wires OpenTelemetry tracing and metrics, Prometheus
// scraping, and trace-aware structured logging for the analyzer.
package observability

import "log/slog"

// Config controls telemetry initialization.
type Config struct {
	// ServiceName identifies this process in exported telemetry.
	ServiceName string

	// ServiceVersion is attached to the telemetry resource when non-empty.
	ServiceVersion string

	// OTLPEndpoint is the gRPC collector endpoint. Empty disables export;
	// tracing and metrics then run on no-op providers.
	OTLPEndpoint string

	// OTLPInsecure disables transport security for the collector connection.
	OTLPInsecure bool

	// LogLevel is the minimum level emitted by the structured logger.
	LogLevel slog.Level

	// LogJSON switches the logger from text to JSON output.
	LogJSON bool
}

// DefaultConfig returns the baseline telemetry configuration.
func DefaultConfig() Config {
	return Config{
		ServiceName: "bundle-analyzer",
		LogLevel:    slog.LevelInfo,
	}
}
