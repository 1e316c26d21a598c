package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultPeriodMinutes  = 60
	DefaultPollInterval   = time.Minute
	DefaultWebhookTimeout = 10 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// Environment variable names. They override the matching log_processing keys.
const (
	EnvPeriodMinutes     = "PERIOD_IN_MINUTES_TO_SEEK_LOGS"
	EnvHostConnectedTo   = "HOST_NAME_CONNECTED_TO"
	EnvHostConnectedFrom = "HOST_NAME_CONNECTED_FROM"
	EnvLogsDirectory     = "LOGS_DIRECTORY"
	EnvTrackingFile      = "LOGS_PROCESSED_TRACKING_FILE"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogProcessing: LogProcessingConfig{
			PeriodMinutes: DefaultPeriodMinutes,
			PollInterval:  DefaultPollInterval,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	lp := &c.LogProcessing

	if v := os.Getenv(EnvPeriodMinutes); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		lp.PeriodMinutes = n
	}
	if v := os.Getenv(EnvHostConnectedTo); v != "" {
		lp.HostConnectedTo = v
	}
	if v := os.Getenv(EnvHostConnectedFrom); v != "" {
		lp.HostConnectedFrom = v
	}
	if v := os.Getenv(EnvLogsDirectory); v != "" {
		lp.LogsDirectory = v
	}
	if v := os.Getenv(EnvTrackingFile); v != "" {
		lp.TrackingFile = v
	}
	return nil
}
