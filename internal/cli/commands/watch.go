package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/connlog/internal/logging"
	"github.com/ccollicutt/connlog/pkg/config"
	"github.com/ccollicutt/connlog/pkg/insights"
	"github.com/ccollicutt/connlog/pkg/metrics"
	"github.com/ccollicutt/connlog/pkg/output"
	"github.com/ccollicutt/connlog/pkg/poller"
	"github.com/ccollicutt/connlog/pkg/webhook"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	Once        bool
	MetricsAddr string
	Output      string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <config-file>",
		Short: "Poll a logs directory and report recent connections",
		Long: `Poll the configured logs directory. Every log file not yet listed in the
tracking file is loaded and queried for the configured period:
  - hosts that connected to host_name_connected_to
  - hosts that host_name_connected_from connected to
  - the host with the most connections

Results are logged, sent to any configured webhooks, and the file is recorded
in the tracking file so later cycles skip it.

Runs until interrupted unless --once is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "Run a single poll cycle and exit")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides config)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Also print each report to stdout (text|json)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	pollerOpts, err := reportPrinter(cmd, opts, logger)
	if err != nil {
		return err
	}

	m := metrics.New()
	dispatcher := webhook.NewDispatcher(cfg.Webhooks, logger, m)
	pollerOpts = append(pollerOpts, poller.WithMetrics(m), poller.WithDispatcher(dispatcher))

	p := poller.New(cfg.LogProcessing, logger, pollerOpts...)

	if opts.Once {
		result, err := p.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("poll cycle: %w", err)
		}
		logger.Info("poll cycle complete",
			"cycle", result.ID,
			"processed", len(result.Processed),
			"skipped", result.Skipped,
			"failed", len(result.Failed),
			"duration", result.Duration)
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Metrics.ListenAddress
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}
	if addr != "" {
		go serveMetrics(ctx, m, addr, logger)
	}

	logger.Info("watching logs directory",
		"dir", cfg.LogProcessing.LogsDirectory,
		"interval", cfg.LogProcessing.PollInterval,
		"period_minutes", cfg.LogProcessing.PeriodMinutes)

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("running poller: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func reportPrinter(cmd *cobra.Command, opts *WatchOptions, logger *log.Logger) ([]poller.Option, error) {
	if opts.Output == "" {
		return nil, nil
	}

	formatter, ok := output.NewFormatter(opts.Output, output.FormatOptions{})
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	printReport := newReportPrinter(cmd.Context(), formatter, cmd.OutOrStdout(), logger.With("component", "poller"))
	return []poller.Option{poller.WithReportFunc(printReport)}, nil
}

// newReportPrinter writes each report to out. Write failures are logged and
// do not stop the cycle.
func newReportPrinter(ctx context.Context, formatter output.Formatter, out io.Writer, logger *log.Logger) poller.ReportFunc {
	return func(report *insights.Report) {
		if err := formatter.FormatInsights(ctx, report, out); err != nil {
			logger.Warn("failed to print report", "file", report.File, "err", err)
		}
	}
}

func serveMetrics(ctx context.Context, m *metrics.Metrics, addr string, logger *log.Logger) {
	logger.Info("serving metrics", "addr", addr)
	if err := m.Serve(ctx, addr); err != nil {
		logger.Error("metrics server stopped", "err", err)
	}
}
