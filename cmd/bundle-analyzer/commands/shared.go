// Package commands implements the bundle-analyzer CLI commands.
package commands

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/analyzer"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/config"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/observability"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/sizes"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
	"github.com/d3viant0ne/webpack-bundle-analyzer/pkg/version"
)

// commonFlags are shared between analyze and serve.
type commonFlags struct {
	configPath  string
	bundleDir   string
	exclude     []string
	compression string
	title       string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "",
		"config file path (default: .bundle-analyzer.yaml in CWD or $HOME)")
	cmd.Flags().StringVarP(&f.bundleDir, "bundle-dir", "b", "",
		"directory containing the built bundle files")
	cmd.Flags().StringSliceVarP(&f.exclude, "exclude", "e", nil,
		"asset name patterns to exclude (regexp, repeatable)")
	cmd.Flags().StringVar(&f.compression, "compression", "",
		"compressed-size algorithm: gzip or lz4")
	cmd.Flags().StringVar(&f.title, "title", "", "report title")
}

// loadConfig reads the config file and folds changed flags over it. Flags
// win over file and environment values.
func (f *commonFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("bundle-dir") {
		cfg.Analysis.BundleDir = f.bundleDir
	}

	if flags.Changed("exclude") {
		cfg.Analysis.ExcludeAssets = f.exclude
	}

	if flags.Changed("compression") {
		cfg.Analysis.Compression = f.compression
	}

	if flags.Changed("title") {
		cfg.Report.Title = f.title
	}

	return cfg, nil
}

// setupTelemetry initializes tracing, metrics, and logging from config.
func setupTelemetry(cfg *config.Config) (observability.Providers, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Telemetry.Insecure
	obsCfg.LogJSON = cfg.Log.JSON
	obsCfg.LogLevel = parseLogLevel(cfg.Log.Level)

	return observability.Init(obsCfg)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildAnalyzer assembles the pipeline from validated configuration.
func buildAnalyzer(cfg *config.Config, providers observability.Providers) (*analyzer.Analyzer, analyzer.Options, error) {
	compressor, err := sizes.ForAlgorithm(cfg.Analysis.Compression)
	if err != nil {
		return nil, analyzer.Options{}, err
	}

	matchers, err := stats.CompileMatchers(cfg.Analysis.ExcludeAssets)
	if err != nil {
		return nil, analyzer.Options{}, fmt.Errorf("compile exclude patterns: %w", err)
	}

	a := &analyzer.Analyzer{
		Logger:     providers.Logger,
		Compressor: compressor,
		Tracer:     providers.Tracer,
	}

	opts := analyzer.Options{
		BundleDir: cfg.Analysis.BundleDir,
		Exclude:   matchers,
	}

	return a, opts, nil
}

// loadSnapshot reads and decodes a stats file. Schema violations are
// advisory: they are logged and decoding proceeds.
func loadSnapshot(path string, logger *slog.Logger) (*stats.Stats, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stats file: %w", err)
	}

	violations, err := stats.ValidateSnapshot(raw)
	if err != nil {
		logger.Warn("stats schema check skipped", "error", err)
	}

	for _, violation := range violations {
		logger.Warn("stats schema violation", "detail", violation)
	}

	snapshot, err := stats.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode stats file %s: %w", path, err)
	}

	return snapshot, nil
}
