// Package insights runs the recent-period queries over one log table.
package insights

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/ccollicutt/connlog/pkg/config"
	"github.com/ccollicutt/connlog/pkg/logtable"
)

// Report holds the period query results for one log file.
type Report struct {
	// CycleID identifies the poll cycle that produced the report.
	CycleID string `json:"cycle_id,omitempty"`

	// File is the log file the table was loaded from.
	File string `json:"file"`

	// Records is the number of records in the table.
	Records int `json:"records"`

	// GeneratedAt is when the queries ran.
	GeneratedAt time.Time `json:"generated_at"`

	// PeriodMinutes and Since describe the window the queries covered.
	PeriodMinutes int       `json:"period_minutes"`
	Since         time.Time `json:"since"`

	HostConnectedTo   string   `json:"host_connected_to"`
	ConnectedTo       []string `json:"connected_to"`
	HostConnectedFrom string   `json:"host_connected_from"`
	ConnectedFrom     []string `json:"connected_from"`

	// TopHost is nil when no connections fall in the window.
	TopHost *logtable.HostCount `json:"top_host,omitempty"`
}

// HasResults reports whether any of the queries returned rows.
func (r *Report) HasResults() bool {
	return len(r.ConnectedTo) > 0 || len(r.ConnectedFrom) > 0 || r.TopHost != nil
}

// Compute runs the three period queries against table. The window ends at now
// and spans cfg.PeriodMinutes.
func Compute(table *logtable.Table, cfg config.LogProcessingConfig, now time.Time) *Report {
	since := logtable.PeriodStartAt(now, cfg.PeriodMinutes)

	report := &Report{
		File:              table.Name(),
		Records:           table.Len(),
		GeneratedAt:       now.UTC(),
		PeriodMinutes:     cfg.PeriodMinutes,
		Since:             since,
		HostConnectedTo:   cfg.HostConnectedTo,
		ConnectedTo:       table.HostsConnectedTo(cfg.HostConnectedTo, since),
		HostConnectedFrom: cfg.HostConnectedFrom,
		ConnectedFrom:     table.HostsConnectedFrom(cfg.HostConnectedFrom, since),
	}

	if top, ok := table.TopConnectingHost(since); ok {
		report.TopHost = &top
	}

	return report
}

// Log writes the report as info lines on logger.
func Log(logger *log.Logger, r *Report) {
	logger.Info("period start", "file", r.File, "since", r.Since.Format(time.RFC3339Nano))

	logger.Info("hostnames connected to host",
		"host", r.HostConnectedTo,
		"minutes", r.PeriodMinutes,
		"hosts", r.ConnectedTo)

	logger.Info("hostnames connected from host",
		"host", r.HostConnectedFrom,
		"minutes", r.PeriodMinutes,
		"hosts", r.ConnectedFrom)

	if r.TopHost == nil {
		logger.Info("no connections in period", "minutes", r.PeriodMinutes)
		return
	}
	logger.Info("hostname with most connections",
		"minutes", r.PeriodMinutes,
		"host", r.TopHost.Host,
		"connections", r.TopHost.Connections)
}
