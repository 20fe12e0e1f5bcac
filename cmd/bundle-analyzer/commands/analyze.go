package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/report"
)

// AnalyzeCommand holds the flags for the analyze command.
type AnalyzeCommand struct {
	common commonFlags
	output string
	format string
}

// NewAnalyzeCommand creates and configures the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &AnalyzeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "analyze <stats-file>",
		Short: "Produce a one-shot composition report from a stats file",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.Run,
	}

	cmd.common.register(cobraCmd)
	cobraCmd.Flags().StringVarP(&cmd.output, "output", "o", "", "output file (default: stdout)")
	cobraCmd.Flags().StringVarP(&cmd.format, "format", "f", "", "output format: html, json, or yaml")

	return cobraCmd
}

// Run executes the analyze command.
func (c *AnalyzeCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := c.common.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("format") {
		cfg.Report.Format = c.format
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return validateErr
	}

	providers, err := setupTelemetry(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()

	snapshot, err := loadSnapshot(args[0], providers.Logger)
	if err != nil {
		return err
	}

	pipeline, opts, err := buildAnalyzer(cfg, providers)
	if err != nil {
		return err
	}

	items, err := pipeline.ChartData(cmd.Context(), snapshot, opts)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		report.WriteEmptyNotice(cmd.OutOrStdout())

		return nil
	}

	out, closeOut, err := c.outputWriter(cmd)
	if err != nil {
		return err
	}

	writeErr := writeReport(out, items, cfg.Report.Format, cfg.Report.Title)

	if closeErr := closeOut(); closeErr != nil && writeErr == nil {
		writeErr = closeErr
	}

	if writeErr != nil {
		return writeErr
	}

	if c.output != "" {
		report.WriteSummary(cmd.OutOrStdout(), items)
		providers.Logger.Info("report written", "path", c.output, "format", cfg.Report.Format)
	}

	return nil
}

func writeReport(out io.Writer, items []*report.ChartItem, format, title string) error {
	switch format {
	case report.FormatJSON:
		return report.WriteJSON(out, items)
	case report.FormatYAML:
		return report.WriteYAML(out, items)
	default:
		return report.RenderHTML(out, items, title)
	}
}

func (c *AnalyzeCommand) outputWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	if c.output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	file, err := os.Create(c.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}

	return file, file.Close, nil
}
