// Package metrics exposes Prometheus collectors for the background poller.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the poller collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	Cycles         prometheus.Counter
	CycleDuration  prometheus.Histogram
	FilesProcessed prometheus.Counter
	FilesSkipped   prometheus.Counter
	FilesFailed    prometheus.Counter
	RecordsLoaded  prometheus.Counter
	Webhooks       *prometheus.CounterVec
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connlog_poll_cycles_total",
			Help: "Total number of poll cycles run",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "connlog_poll_cycle_duration_seconds",
			Help:    "Time spent in a single poll cycle",
			Buckets: prometheus.DefBuckets,
		}),
		FilesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connlog_files_processed_total",
			Help: "Log files loaded and queried",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connlog_files_skipped_total",
			Help: "Log files skipped because the tracker already lists them",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connlog_files_failed_total",
			Help: "Log files that could not be loaded",
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connlog_records_loaded_total",
			Help: "Connection records loaded from log files",
		}),
		Webhooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "connlog_webhook_deliveries_total",
				Help: "Webhook deliveries by outcome",
			},
			[]string{"webhook", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.CycleDuration,
		m.FilesProcessed,
		m.FilesSkipped,
		m.FilesFailed,
		m.RecordsLoaded,
		m.Webhooks,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
