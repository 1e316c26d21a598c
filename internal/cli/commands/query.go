package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/connlog/internal/logging"
	"github.com/ccollicutt/connlog/pkg/logtable"
	"github.com/ccollicutt/connlog/pkg/output"
)

// QueryOptions holds command-line options for the query command.
type QueryOptions struct {
	FilePath     string
	InitDatetime string
	EndDatetime  string
	Hostname     string
	Output       string
	Verbose      bool
	Quiet        bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List hosts that connected to a host within a time range",
		Long: `Load a connection log file and list every connection made to the given
hostname between two datetimes, inclusive.

Log lines have the form:
  <epoch_millis> <source_host> <target_host>

--file_path may be a glob (e.g. "logs/conn-*.log.gz"); matching files are
merged in timestamp order.

Datetimes are read as UTC and need a fractional part of one to six digits,
e.g. "2019-08-12 22:00:04.351000".

Exit codes:
  0 - Success (also when a required flag is missing and the given
      datetimes are valid)
  2 - Invalid datetime, unreadable or malformed log file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.FilePath, "file_path", "", "Log file or glob pattern to load")
	cmd.Flags().StringVar(&opts.InitDatetime, "init_datetime", "", "Start of the range (YYYY-MM-DD HH:MM:SS.ffffff, UTC)")
	cmd.Flags().StringVar(&opts.EndDatetime, "end_datetime", "", "End of the range (YYYY-MM-DD HH:MM:SS.ffffff, UTC)")
	cmd.Flags().StringVar(&opts.Hostname, "hostname", "", "Target hostname")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include file and timing details")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.Default(cmd.ErrOrStderr())

	// Datetimes are checked before the missing-flag warning so a malformed
	// value is always an error.
	var start, end time.Time
	var err error
	if opts.InitDatetime != "" {
		if start, err = parseDateTime(opts.InitDatetime); err != nil {
			return fmt.Errorf("invalid init_datetime %q: %w", opts.InitDatetime, err)
		}
	}
	if opts.EndDatetime != "" {
		if end, err = parseDateTime(opts.EndDatetime); err != nil {
			return fmt.Errorf("invalid end_datetime %q: %w", opts.EndDatetime, err)
		}
	}

	if missing := opts.missingFlags(); len(missing) > 0 {
		logger.Warn("missing required arguments, nothing to query", "flags", strings.Join(missing, ", "))
		return nil
	}

	formatter, ok := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if !ok {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	started := time.Now()
	table, err := logtable.LoadAll(ctx, opts.FilePath)
	if err != nil {
		return fmt.Errorf("loading log file: %w", err)
	}

	q := output.Query{
		File:     opts.FilePath,
		Hostname: opts.Hostname,
		Start:    start,
		End:      end,
	}
	conns := table.FilterByTargetAndRange(start, end, opts.Hostname)
	report := output.NewQueryReport(table, q, conns, started)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}

func (o *QueryOptions) missingFlags() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"file_path", o.FilePath},
		{"init_datetime", o.InitDatetime},
		{"end_datetime", o.EndDatetime},
		{"hostname", o.Hostname},
	} {
		if f.value == "" {
			missing = append(missing, "--"+f.name)
		}
	}
	return missing
}

var dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d{1,6}$`)

// parseDateTime reads s as a UTC wall-clock time of the form
// "YYYY-MM-DD HH:MM:SS.ffffff". The fraction is required and has one to six
// digits.
func parseDateTime(s string) (time.Time, error) {
	if !dateTimePattern.MatchString(s) {
		return time.Time{}, errors.New("want YYYY-MM-DD HH:MM:SS.ffffff")
	}
	return time.ParseInLocation(time.DateTime, s, time.UTC)
}
