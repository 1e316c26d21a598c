package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and fills in defaults.
func Validate(cfg *Config) error {
	if err := validateLogProcessing(&cfg.LogProcessing); err != nil {
		return fmt.Errorf("log_processing: %w", err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	// Webhooks are optional, but validate if present
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			return fmt.Errorf("webhooks[%d] (%s): %w", i, cfg.Webhooks[i].DisplayName(), err)
		}
	}

	return nil
}

func validateLogProcessing(lp *LogProcessingConfig) error {
	if lp.PeriodMinutes <= 0 {
		return fmt.Errorf("period_in_minutes_to_seek_logs must be > 0, got %d", lp.PeriodMinutes)
	}
	if strings.TrimSpace(lp.HostConnectedTo) == "" {
		return errors.New("host_name_connected_to is required")
	}
	if strings.TrimSpace(lp.HostConnectedFrom) == "" {
		return errors.New("host_name_connected_from is required")
	}
	if strings.TrimSpace(lp.LogsDirectory) == "" {
		return errors.New("logs_directory is required")
	}
	if strings.TrimSpace(lp.TrackingFile) == "" {
		return errors.New("logs_processed_tracking_file is required")
	}
	if lp.PollInterval <= 0 {
		lp.PollInterval = DefaultPollInterval
	}
	return nil
}

func validateLogging(lc *LoggingConfig) error {
	if lc.Level == "" {
		lc.Level = DefaultLogLevel
	}
	switch lc.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q (must be debug, info, warn, or error)", lc.Level)
	}

	if lc.Format == "" {
		lc.Format = DefaultLogFormat
	}
	switch lc.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid format %q (must be text, json, or logfmt)", lc.Format)
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	if wh.Trigger != "" {
		switch wh.Trigger {
		case WebhookTriggerOnResults, WebhookTriggerAlways, WebhookTriggerNever:
		default:
			return fmt.Errorf("invalid trigger %q (must be on_results, always, or never)", wh.Trigger)
		}
	} else {
		wh.Trigger = WebhookTriggerOnResults
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}

	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}

	return s
}
