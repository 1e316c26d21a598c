// Package config provides configuration loading and validation for connlog.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	LogProcessing LogProcessingConfig `yaml:"log_processing"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	Webhooks      []WebhookConfig     `yaml:"webhooks,omitempty"`
}

// LogProcessingConfig drives the background poller and its insight queries.
type LogProcessingConfig struct {
	// PeriodMinutes is how far back, in minutes, the insight queries look.
	PeriodMinutes int `yaml:"period_in_minutes_to_seek_logs"`

	// HostConnectedTo is the target host for the "connected to" insight.
	HostConnectedTo string `yaml:"host_name_connected_to"`

	// HostConnectedFrom is the source host for the "connected from" insight.
	HostConnectedFrom string `yaml:"host_name_connected_from"`

	// LogsDirectory is scanned for new log files on every cycle.
	LogsDirectory string `yaml:"logs_directory"`

	// TrackingFile records which log files were already processed.
	TrackingFile string `yaml:"logs_processed_tracking_file"`

	// PollInterval is the time between cycles.
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`

	// WatchDirectory triggers an extra cycle when files appear in LogsDirectory.
	WatchDirectory bool `yaml:"watch_directory,omitempty"`
}

// Period returns PeriodMinutes as a duration.
func (c *LogProcessingConfig) Period() time.Duration {
	return time.Duration(c.PeriodMinutes) * time.Minute
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is one of text, json, logfmt.
	Format string `yaml:"format,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// ListenAddress serves /metrics when non-empty (e.g. ":9090").
	ListenAddress string `yaml:"listen_address,omitempty"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnResults fires only when an insight query returned rows (default).
	WebhookTriggerOnResults WebhookTrigger = "on_results"
	// WebhookTriggerAlways fires for every processed file.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending insight reports.
type WebhookConfig struct {
	// Name is an optional identifier for the webhook.
	Name string `yaml:"name,omitempty"`

	// URL is the webhook endpoint (required).
	URL string `yaml:"url"`

	// Token is an optional bearer token for authentication.
	Token string `yaml:"token,omitempty"`

	// Trigger determines when the webhook fires.
	// Defaults to "on_results" if not specified.
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`

	// Timeout is the HTTP request timeout.
	// Defaults to 10s if not specified.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DisplayName returns Name, falling back to URL.
func (w *WebhookConfig) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.URL
}
