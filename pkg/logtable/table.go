package logtable

import (
	"context"
	"io"
	"sort"
	"time"
)

// Table is an immutable, ordered set of records loaded from one log source.
// Queries never modify the table; each returns a fresh slice.
type Table struct {
	name    string
	records []Record
}

// Load reads every record from the log file at path.
// Any malformed line fails the whole load.
func Load(ctx context.Context, path string) (*Table, error) {
	src, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return Collect(ctx, src, path)
}

// FromReader reads every record from r.
func FromReader(ctx context.Context, r io.Reader, name string) (*Table, error) {
	return Collect(ctx, NewReaderSource(r, name), name)
}

// Collect drains src into a new Table.
func Collect(ctx context.Context, src RecordSource, name string) (*Table, error) {
	t := &Table{name: name}
	err := Scan(ctx, src, func(rec *Record) error {
		t.records = append(t.records, *rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewTable builds a table from records already in memory, in the given order.
func NewTable(name string, records []Record) *Table {
	copied := make([]Record, len(records))
	copy(copied, records)
	return &Table{name: name, records: copied}
}

// Name returns the source name the table was loaded from.
func (t *Table) Name() string {
	return t.name
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of the records in load order.
func (t *Table) Records() []Record {
	copied := make([]Record, len(t.records))
	copy(copied, t.records)
	return copied
}

// FilterByTargetAndRange returns the connections to targetHost made between
// start and end, both inclusive, in load order. start after end yields nothing.
func (t *Table) FilterByTargetAndRange(start, end time.Time, targetHost string) []Connection {
	result := make([]Connection, 0)
	for _, rec := range t.records {
		if rec.TargetHost != targetHost {
			continue
		}
		if rec.ConnectedAt.Before(start) || rec.ConnectedAt.After(end) {
			continue
		}
		result = append(result, Connection{
			SourceHost:  rec.SourceHost,
			TargetHost:  rec.TargetHost,
			ConnectedAt: rec.ConnectedAt,
		})
	}
	return result
}

// HostsConnectedTo returns the source host of every connection to targetHost
// at or after since, sorted ascending. A host appears once per connection.
//
// since is compared by its wall clock read as UTC; see WallClockUTC.
func (t *Table) HostsConnectedTo(targetHost string, since time.Time) []string {
	hosts := make([]string, 0)
	for _, rec := range t.inPeriod(since) {
		if rec.TargetHost == targetHost {
			hosts = append(hosts, rec.SourceHost)
		}
	}
	sort.Strings(hosts)
	return hosts
}

// HostsConnectedFrom returns the target host of every connection made by
// sourceHost at or after since, sorted ascending. A host appears once per
// connection.
func (t *Table) HostsConnectedFrom(sourceHost string, since time.Time) []string {
	hosts := make([]string, 0)
	for _, rec := range t.inPeriod(since) {
		if rec.SourceHost == sourceHost {
			hosts = append(hosts, rec.TargetHost)
		}
	}
	sort.Strings(hosts)
	return hosts
}

// SourceHostCounts groups the connections made at or after since by source
// host, ordered by host ascending and then count descending.
func (t *Table) SourceHostCounts(since time.Time) []HostCount {
	counts := make(map[string]int)
	for _, rec := range t.inPeriod(since) {
		counts[rec.SourceHost]++
	}

	groups := make([]HostCount, 0, len(counts))
	for host, n := range counts {
		groups = append(groups, HostCount{Host: host, Connections: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Host != groups[j].Host {
			return groups[i].Host < groups[j].Host
		}
		return groups[i].Connections > groups[j].Connections
	})
	return groups
}

// TopConnectingHost returns the first group of SourceHostCounts. With the
// host-first ordering, equal counts go to the lexicographically smaller host.
// The bool is false when no connections fall in the period.
func (t *Table) TopConnectingHost(since time.Time) (HostCount, bool) {
	groups := t.SourceHostCounts(since)
	if len(groups) == 0 {
		return HostCount{}, false
	}
	return groups[0], true
}

func (t *Table) inPeriod(since time.Time) []Record {
	bound := WallClockUTC(since)
	var out []Record
	for _, rec := range t.records {
		if !rec.ConnectedAt.Before(bound) {
			out = append(out, rec)
		}
	}
	return out
}
