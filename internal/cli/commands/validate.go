package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/connlog/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a connlog configuration file without polling.

Checks:
  - YAML syntax
  - Required log_processing fields (after environment overrides)
  - Logging level and format
  - Webhook URLs and triggers
  - Logs directory existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	lp := cfg.LogProcessing
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Period:         %d minute(s)\n", lp.PeriodMinutes)
	fmt.Fprintf(w, "  Connected to:   %s\n", lp.HostConnectedTo)
	fmt.Fprintf(w, "  Connected from: %s\n", lp.HostConnectedFrom)
	fmt.Fprintf(w, "  Logs directory: %s\n", lp.LogsDirectory)
	fmt.Fprintf(w, "  Tracking file:  %s\n", lp.TrackingFile)
	fmt.Fprintf(w, "  Poll interval:  %s\n", lp.PollInterval)
	fmt.Fprintf(w, "  Webhooks:       %d\n", len(cfg.Webhooks))

	for i, wh := range cfg.Webhooks {
		fmt.Fprintf(w, "    %d. %s [%s]\n", i+1, wh.DisplayName(), wh.Trigger)
	}

	if info, err := os.Stat(lp.LogsDirectory); err != nil {
		fmt.Fprintf(w, "\nWarning: logs directory not accessible: %v\n", err)
	} else if !info.IsDir() {
		fmt.Fprintf(w, "\nWarning: logs directory %s is not a directory\n", lp.LogsDirectory)
	}

	return nil
}
