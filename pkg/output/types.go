// Package output provides formatting and output generation for query results.
package output

import (
	"fmt"
	"time"

	"github.com/ccollicutt/connlog/pkg/logtable"
)

// QueryReport is the result of one range query against a log file.
type QueryReport struct {
	// Query describes what was asked.
	Query Query `json:"query"`

	// Connections are the matching rows in load order.
	Connections []logtable.Connection `json:"connections"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Query holds the range query parameters.
type Query struct {
	File     string    `json:"file"`
	Hostname string    `json:"hostname"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// RecordsLoaded is the number of records in the log file.
	RecordsLoaded int `json:"records_loaded"`

	// Matches is the number of connections returned.
	Matches int `json:"matches"`

	// DistinctSources is the number of different source hosts among the matches.
	DistinctSources int `json:"distinct_sources"`
}

// Metadata provides context about the query run.
type Metadata struct {
	// QueriedAt is when the query was performed.
	QueriedAt time.Time `json:"queried_at"`

	// Duration is how long loading and querying took.
	Duration time.Duration `json:"duration"`
}

// NewQueryReport builds a report from a table and the connections a range
// query returned for it.
func NewQueryReport(table *logtable.Table, q Query, conns []logtable.Connection, started time.Time) *QueryReport {
	sources := make(map[string]struct{})
	for _, c := range conns {
		sources[c.SourceHost] = struct{}{}
	}

	now := time.Now()
	return &QueryReport{
		Query:       q,
		Connections: conns,
		Summary: Summary{
			RecordsLoaded:   table.Len(),
			Matches:         len(conns),
			DistinctSources: len(sources),
		},
		Metadata: Metadata{
			QueriedAt: now.UTC(),
			Duration:  now.Sub(started),
		},
	}
}

// HasMatches returns true if any connection matched.
func (r *QueryReport) HasMatches() bool {
	return len(r.Connections) > 0
}

// DateTimeLayout is the layout used for datetimes in text output and CLI flags.
const DateTimeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

func formatHostCount(hc *logtable.HostCount) string {
	if hc == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%d connections)", hc.Host, hc.Connections)
}
