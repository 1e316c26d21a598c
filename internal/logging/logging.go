// Package logging builds the leveled loggers used across connlog.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "connlog"

// Options configures a logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Format is one of text, json, logfmt. Empty means text.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// New creates a logger from opts.
func New(opts Options) (*log.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	formatter, err := parseFormatter(opts.Format)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(out, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Formatter:       formatter,
	}), nil
}

// Default returns an info-level text logger writing to w.
func Default(w io.Writer) *log.Logger {
	logger, _ := New(Options{Output: w})
	return logger
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return Default(io.Discard)
}

func parseFormatter(format string) (log.Formatter, error) {
	switch format {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return log.TextFormatter, fmt.Errorf("unknown log format %q (use text, json, or logfmt)", format)
	}
}
