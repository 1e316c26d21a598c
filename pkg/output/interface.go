package output

import (
	"context"
	"io"

	"github.com/ccollicutt/connlog/pkg/insights"
)

// Formatter renders query and insight results in a specific format.
type Formatter interface {
	// Format renders a range query report to the given writer.
	Format(ctx context.Context, report *QueryReport, w io.Writer) error

	// FormatInsights renders the period insights for one log file.
	FormatInsights(ctx context.Context, report *insights.Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds timing and source details.
	Verbose bool

	// Quiet enables minimal summary-only output.
	Quiet bool
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, bool) {
	switch name {
	case "text":
		return NewTextFormatter(opts), true
	case "json":
		return NewJSONFormatter(opts), true
	default:
		return nil, false
	}
}
