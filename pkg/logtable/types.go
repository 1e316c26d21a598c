// Package logtable loads connection logs into an in-memory table and answers
// time-bounded queries over it.
package logtable

import "time"

// Record is a single parsed connection-log line.
type Record struct {
	// Timestamp is the connection time in milliseconds since the Unix epoch.
	Timestamp int64

	// SourceHost is the host that opened the connection.
	SourceHost string

	// TargetHost is the host that received the connection.
	TargetHost string

	// ConnectedAt is Timestamp as a UTC time with millisecond precision.
	ConnectedAt time.Time

	// Source is the file this record came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Connection is one row of a range query result.
type Connection struct {
	SourceHost  string    `json:"source_host"`
	TargetHost  string    `json:"target_host"`
	ConnectedAt time.Time `json:"connected_at"`
}

// HostCount is the number of outbound connections made by a host.
type HostCount struct {
	Host        string `json:"source_host"`
	Connections int    `json:"connection_count"`
}

// NewRecord builds a Record from its three fields, deriving ConnectedAt.
func NewRecord(timestamp int64, sourceHost, targetHost string) Record {
	return Record{
		Timestamp:   timestamp,
		SourceHost:  sourceHost,
		TargetHost:  targetHost,
		ConnectedAt: FromEpochMillis(timestamp),
	}
}

// FromEpochMillis converts milliseconds since the Unix epoch to a UTC time.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// ToEpochMillis converts a time back to milliseconds since the Unix epoch.
func ToEpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}
