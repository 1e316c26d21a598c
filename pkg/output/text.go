package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/connlog/pkg/insights"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *QueryReport, w io.Writer) error {
	if f.opts.Quiet {
		_, err := fmt.Fprintf(w, "connlog: %d connection(s) to %s from %d host(s)\n",
			report.Summary.Matches,
			report.Query.Hostname,
			report.Summary.DistinctSources)
		return err
	}

	q := report.Query
	fmt.Fprintln(w, "=== connlog Query Report ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Hostnames connected to %q between %s and %s:\n",
		q.Hostname, formatTime(q.Start), formatTime(q.End))

	if !report.HasMatches() {
		fmt.Fprintln(w, "  No connections found")
	}
	for _, c := range report.Connections {
		fmt.Fprintf(w, "  - %s -> %s at %s\n", c.SourceHost, c.TargetHost, formatTime(c.ConnectedAt))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d connection(s), %d distinct source host(s), %d record(s) loaded\n",
		report.Summary.Matches,
		report.Summary.DistinctSources,
		report.Summary.RecordsLoaded)

	if f.opts.Verbose {
		fmt.Fprintf(w, "File: %s\n", q.File)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

// FormatInsights renders the period insights as text.
func (f *TextFormatter) FormatInsights(ctx context.Context, report *insights.Report, w io.Writer) error {
	if f.opts.Quiet {
		_, err := fmt.Fprintf(w, "connlog: %s: to=%d from=%d top=%s\n",
			report.File,
			len(report.ConnectedTo),
			len(report.ConnectedFrom),
			formatHostCount(report.TopHost))
		return err
	}

	fmt.Fprintf(w, "[INSIGHTS] %s\n", report.File)
	fmt.Fprintf(w, "  Period: last %d minute(s), since %s\n", report.PeriodMinutes, formatTime(report.Since))
	fmt.Fprintf(w, "  Connected to %s: %s\n", report.HostConnectedTo, joinHosts(report.ConnectedTo))
	fmt.Fprintf(w, "  Connected from %s: %s\n", report.HostConnectedFrom, joinHosts(report.ConnectedFrom))
	fmt.Fprintf(w, "  Most connections: %s\n", formatHostCount(report.TopHost))

	if f.opts.Verbose {
		fmt.Fprintf(w, "  Records: %d\n", report.Records)
		if report.CycleID != "" {
			fmt.Fprintf(w, "  Cycle: %s\n", report.CycleID)
		}
	}
	fmt.Fprintln(w)
	return nil
}

func joinHosts(hosts []string) string {
	if len(hosts) == 0 {
		return "none"
	}
	return strings.Join(hosts, ", ")
}
