// Package cli provides the command-line interface for connlog.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/connlog/internal/cli/commands"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 2
)

// Execute runs the root command with os.Args and returns the exit code.
func Execute() int {
	return ExecuteArgs(context.Background(), os.Args[1:])
}

// ExecuteArgs runs the root command with args and returns the exit code.
func ExecuteArgs(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return ExitError
	}
	return ExitOK
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "connlog",
		Short: "Query host connection logs",
		Long: `connlog reads connection logs, one record per line:

  <epoch_millis> <source_host> <target_host>

It answers two kinds of question:
  - query: which hosts connected to a given host within a time range
  - watch: for every new file in a logs directory, which hosts connected to
    and from the configured hosts in the last period, and which host made
    the most connections`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
