package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/live"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/observability"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/report"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
)

// ServeCommand holds the flags for the serve command.
type ServeCommand struct {
	common commonFlags
	host   string
	port   int
}

// NewServeCommand creates and configures the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &ServeCommand{}

	cobraCmd := &cobra.Command{
		Use:   "serve [stats-file]",
		Short: "Run the live report server",
		Long: `Serve the interactive report over HTTP. New stats snapshots posted to
/stats are reanalyzed and pushed to connected websocket clients. An optional
stats file seeds the initial report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: cmd.Run,
	}

	cmd.common.register(cobraCmd)
	cobraCmd.Flags().StringVar(&cmd.host, "host", "", "listen host")
	cobraCmd.Flags().IntVarP(&cmd.port, "port", "p", 0, "listen port")

	return cobraCmd
}

// Run executes the serve command.
func (c *ServeCommand) Run(cmd *cobra.Command, args []string) error {
	cfg, err := c.common.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host = c.host
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = c.port
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

	metricsHandler, meter, err := observability.PrometheusHandler()
	if err != nil {
		return err
	}

	pipelineMetrics, err := observability.NewPipelineMetrics(meter)
	if err != nil {
		return err
	}

	analyzerPipeline, opts, err := buildAnalyzer(cfg, providers)
	if err != nil {
		return err
	}

	channel := live.NewChannel(providers.Logger, func(ctx context.Context, st *stats.Stats) ([]*report.ChartItem, error) {
		return analyzerPipeline.ChartData(ctx, st, opts)
	})

	if len(args) == 1 {
		snapshot, loadErr := loadSnapshot(args[0], providers.Logger)
		if loadErr != nil {
			return loadErr
		}

		if _, recomputeErr := channel.Recompute(cmd.Context(), snapshot); recomputeErr != nil {
			return recomputeErr
		}
	}

	server := live.NewServer(live.ServerConfig{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Title:    cfg.Report.Title,
		Metrics:  metricsHandler,
		Pipeline: pipelineMetrics,
	}, channel, providers.Logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)

	go func() {
		listenErr <- server.Listen()
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		providers.Logger.Info("shutting down live report server")

		return server.Shutdown()
	}
}
