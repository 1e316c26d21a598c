// Package poller periodically scans the logs directory, runs the period
// insights on every log file not yet processed, and records it in the tracker.
package poller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/ccollicutt/connlog/pkg/config"
	"github.com/ccollicutt/connlog/pkg/insights"
	"github.com/ccollicutt/connlog/pkg/logtable"
	"github.com/ccollicutt/connlog/pkg/metrics"
	"github.com/ccollicutt/connlog/pkg/tracker"
)

const watchSettleDelay = 250 * time.Millisecond

// Dispatcher delivers a report to external sinks.
type Dispatcher interface {
	Dispatch(ctx context.Context, report *insights.Report) int
}

// ReportFunc receives every report a cycle produces.
type ReportFunc func(report *insights.Report)

// CycleResult summarizes a single poll cycle.
type CycleResult struct {
	ID        string
	Processed []string
	Skipped   int
	Failed    []string
	Duration  time.Duration
}

// Poller runs poll cycles over cfg.LogsDirectory.
type Poller struct {
	cfg        config.LogProcessingConfig
	logger     *log.Logger
	metrics    *metrics.Metrics
	dispatcher Dispatcher
	onReport   ReportFunc
	now        func() time.Time
}

// Option configures a Poller.
type Option func(*Poller)

// WithMetrics records cycle statistics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithDispatcher sends every report to d.
func WithDispatcher(d Dispatcher) Option {
	return func(p *Poller) { p.dispatcher = d }
}

// WithReportFunc calls fn with every report.
func WithReportFunc(fn ReportFunc) Option {
	return func(p *Poller) { p.onReport = fn }
}

// WithClock overrides the time source used for the period window.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

// New creates a poller for the given log processing settings.
func New(cfg config.LogProcessingConfig, logger *log.Logger, opts ...Option) *Poller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}

	p := &Poller{
		cfg:    cfg,
		logger: logger.With("component", "poller"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunOnce executes one cycle: every untracked file in the logs directory is
// loaded, queried, reported and then tracked. A file that fails to load is
// logged and left untracked so the next cycle retries it.
func (p *Poller) RunOnce(ctx context.Context) (result CycleResult, err error) {
	started := time.Now()
	result.ID = uuid.NewString()
	logger := p.logger.With("cycle", result.ID)

	defer func() {
		result.Duration = time.Since(started)
		if p.metrics != nil {
			p.metrics.Cycles.Inc()
			p.metrics.CycleDuration.Observe(result.Duration.Seconds())
		}
	}()

	names, err := listLogFiles(p.cfg.LogsDirectory, p.cfg.TrackingFile)
	if err != nil {
		return result, err
	}

	tr, err := tracker.Load(p.cfg.TrackingFile)
	if err != nil {
		return result, fmt.Errorf("loading tracker: %w", err)
	}

	logger.Debug("poll cycle started", "files", len(names), "tracked", tr.Len())

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if tr.Contains(name) {
			result.Skipped++
			p.inc(func(m *metrics.Metrics) { m.FilesSkipped.Inc() })
			continue
		}

		path := filepath.Join(p.cfg.LogsDirectory, name)
		table, err := logtable.Load(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return result, err
			}
			result.Failed = append(result.Failed, name)
			p.inc(func(m *metrics.Metrics) { m.FilesFailed.Inc() })
			logger.Error("failed to load log file", "file", path, "err", err)
			continue
		}

		report := insights.Compute(table, p.cfg, p.now())
		report.CycleID = result.ID
		insights.Log(logger, report)

		if p.onReport != nil {
			p.onReport(report)
		}
		if p.dispatcher != nil {
			p.dispatcher.Dispatch(ctx, report)
		}

		tr.Add(name)
		result.Processed = append(result.Processed, name)
		p.inc(func(m *metrics.Metrics) {
			m.FilesProcessed.Inc()
			m.RecordsLoaded.Add(float64(table.Len()))
		})
	}

	if len(result.Processed) > 0 {
		if err := tr.Save(); err != nil {
			return result, fmt.Errorf("saving tracker: %w", err)
		}
	}

	logger.Debug("poll cycle finished",
		"processed", len(result.Processed),
		"skipped", result.Skipped,
		"failed", len(result.Failed))

	return result, nil
}

// Run executes a cycle immediately and then once per poll interval until ctx
// is cancelled. With WatchDirectory set, files created or written in the logs
// directory also trigger a cycle. Cycles never overlap.
func (p *Poller) Run(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var watchErrs <-chan error

	if p.cfg.WatchDirectory {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("creating watcher: %w", err)
		}
		defer watcher.Close()

		if err := watcher.Add(p.cfg.LogsDirectory); err != nil {
			return fmt.Errorf("watching %s: %w", p.cfg.LogsDirectory, err)
		}
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	p.cycle(ctx)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	// Bursts of events settle before the cycle runs.
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.cycle(ctx)
		case <-settle:
			settle = nil
			p.cycle(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				p.logger.Debug("logs directory changed", "file", ev.Name, "op", ev.Op.String())
				settle = time.After(watchSettleDelay)
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			p.logger.Warn("watcher error", "err", err)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if _, err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("poll cycle failed", "err", err)
	}
}

func (p *Poller) inc(fn func(m *metrics.Metrics)) {
	if p.metrics != nil {
		fn(p.metrics)
	}
}

// listLogFiles returns the names of the files in dir, sorted. Directories and
// the tracking file (with its temp files) are left out when they live in dir.
func listLogFiles(dir, trackingFile string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading logs directory: %w", err)
	}

	trackingName := trackingNameIn(dir, trackingFile)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if trackingName != "" && isTrackingFile(e.Name(), trackingName) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// trackingNameIn returns the base name of trackingFile when it lives in dir,
// comparing absolute paths.
func trackingNameIn(dir, trackingFile string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	absTracking, err := filepath.Abs(trackingFile)
	if err != nil {
		return ""
	}
	if filepath.Dir(absTracking) != absDir {
		return ""
	}
	return filepath.Base(absTracking)
}

// isTrackingFile matches the tracking file and the "<name>.<n>.tmp" files
// tracker.Save writes next to it.
func isTrackingFile(name, trackingName string) bool {
	if name == trackingName {
		return true
	}
	return strings.HasPrefix(name, trackingName+".") && strings.HasSuffix(name, ".tmp")
}
