package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/connlog/pkg/insights"
	"github.com/ccollicutt/connlog/pkg/logtable"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func createTestReport() *QueryReport {
	table := logtable.NewTable("test.log", []logtable.Record{
		logtable.NewRecord(1000, "h1", "h2"),
		logtable.NewRecord(2000, "h3", "h2"),
		logtable.NewRecord(3000, "h1", "h3"),
	})
	q := Query{
		File:     "test.log",
		Hostname: "h2",
		Start:    logtable.FromEpochMillis(0),
		End:      logtable.FromEpochMillis(2500),
	}
	conns := table.FilterByTargetAndRange(q.Start, q.End, q.Hostname)
	return NewQueryReport(table, q, conns, time.Now())
}

func createInsightsReport() *insights.Report {
	return &insights.Report{
		CycleID:           "0b5c8d9e",
		File:              "/logs/a.log",
		Records:           12,
		GeneratedAt:       baseTime,
		PeriodMinutes:     60,
		Since:             baseTime.Add(-time.Hour),
		HostConnectedTo:   "Aadvik",
		ConnectedTo:       []string{"Keimy", "Matina"},
		HostConnectedFrom: "Aadvik",
		ConnectedFrom:     nil,
		TopHost:           &logtable.HostCount{Host: "Keimy", Connections: 4},
	}
}

func TestNewQueryReport(t *testing.T) {
	report := createTestReport()

	if report.Summary.RecordsLoaded != 3 {
		t.Errorf("RecordsLoaded = %d, want 3", report.Summary.RecordsLoaded)
	}
	if report.Summary.Matches != 2 {
		t.Errorf("Matches = %d, want 2", report.Summary.Matches)
	}
	if report.Summary.DistinctSources != 2 {
		t.Errorf("DistinctSources = %d, want 2", report.Summary.DistinctSources)
	}
	if !report.HasMatches() {
		t.Error("HasMatches() = false, want true")
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"text", "json"} {
		f, ok := NewFormatter(name, FormatOptions{})
		if !ok || f.Name() != name {
			t.Errorf("NewFormatter(%q) = %v, %v", name, f, ok)
		}
	}
	if _, ok := NewFormatter("xml", FormatOptions{}); ok {
		t.Error("NewFormatter(xml) ok = true, want false")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	checks := []string{
		"connlog Query Report",
		`Hostnames connected to "h2"`,
		"h1 -> h2 at 1970-01-01 00:00:01.000000",
		"h3 -> h2 at 1970-01-01 00:00:02.000000",
		"2 connection(s)",
	}
	for _, check := range checks {
		if !strings.Contains(output, check) {
			t.Errorf("Output missing %q:\n%s", check, output)
		}
	}
	if strings.Contains(output, "h1 -> h3") {
		t.Error("Output contains connection to a different host")
	}
	if strings.Contains(output, "Duration:") {
		t.Error("Non-verbose output contains duration")
	}
}

func TestTextFormatter_Format_Empty(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	report := &QueryReport{Query: Query{Hostname: "nobody"}}

	var buf bytes.Buffer
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No connections found") {
		t.Errorf("Output missing empty marker:\n%s", buf.String())
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("Quiet output has %d lines, want 1", len(lines))
	}
	if !strings.HasPrefix(buf.String(), "connlog:") {
		t.Error("Quiet output missing prefix")
	}
}

func TestTextFormatter_Format_Verbose(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "File: test.log") {
		t.Error("Verbose output missing file")
	}
	if !strings.Contains(output, "Duration:") {
		t.Error("Verbose output missing duration")
	}
}

func TestTextFormatter_FormatInsights(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	if err := f.FormatInsights(context.Background(), createInsightsReport(), &buf); err != nil {
		t.Fatalf("FormatInsights() error = %v", err)
	}

	output := buf.String()
	checks := []string{
		"[INSIGHTS] /logs/a.log",
		"last 60 minute(s)",
		"Connected to Aadvik: Keimy, Matina",
		"Connected from Aadvik: none",
		"Most connections: Keimy (4 connections)",
		"Cycle: 0b5c8d9e",
	}
	for _, check := range checks {
		if !strings.Contains(output, check) {
			t.Errorf("Output missing %q:\n%s", check, output)
		}
	}
}

func TestTextFormatter_FormatInsights_Quiet(t *testing.T) {
	f := NewTextFormatter(FormatOptions{Quiet: true})
	report := createInsightsReport()
	report.TopHost = nil

	var buf bytes.Buffer
	if err := f.FormatInsights(context.Background(), report, &buf); err != nil {
		t.Fatalf("FormatInsights() error = %v", err)
	}

	want := "connlog: /logs/a.log: to=2 from=0 top=none\n"
	if buf.String() != want {
		t.Errorf("FormatInsights() = %q, want %q", buf.String(), want)
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed QueryReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if len(parsed.Connections) != 2 {
		t.Fatalf("len(Connections) = %d, want 2", len(parsed.Connections))
	}
	if parsed.Connections[1].SourceHost != "h3" {
		t.Errorf("Connections[1].SourceHost = %q, want h3", parsed.Connections[1].SourceHost)
	}
	if !parsed.Connections[0].ConnectedAt.Equal(logtable.FromEpochMillis(1000)) {
		t.Errorf("Connections[0].ConnectedAt = %v", parsed.Connections[0].ConnectedAt)
	}
	if parsed.Query.Hostname != "h2" {
		t.Errorf("Query.Hostname = %q, want h2", parsed.Query.Hostname)
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Summary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.Matches != 2 {
		t.Errorf("Matches = %d, want 2", parsed.Matches)
	}
}

func TestJSONFormatter_FormatInsights(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.FormatInsights(context.Background(), createInsightsReport(), &buf); err != nil {
		t.Fatalf("FormatInsights() error = %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	top, ok := parsed["top_host"].(map[string]interface{})
	if !ok {
		t.Fatalf("top_host = %v, want object", parsed["top_host"])
	}
	if top["source_host"] != "Keimy" || top["connection_count"] != float64(4) {
		t.Errorf("top_host = %v", top)
	}
	if parsed["cycle_id"] != "0b5c8d9e" {
		t.Errorf("cycle_id = %v", parsed["cycle_id"])
	}
}
