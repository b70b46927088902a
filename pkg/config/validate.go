package config

import (
	"fmt"
	"strings"
)

var validBackends = map[string]bool{"memory": true, "sqlite": true}
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"json": true, "text": true}

// Validate checks a configuration for consistency. It is called after
// defaults are applied, so zero values that have defaults never reach it.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.Corpus.Path == "" {
		problems = append(problems, "corpus.path must not be empty")
	}
	if cfg.Corpus.Debounce < 0 {
		problems = append(problems, "corpus.debounce must not be negative")
	}

	if !validBackends[cfg.Evidence.Backend] {
		problems = append(problems, fmt.Sprintf("evidence.backend %q is not one of: memory, sqlite", cfg.Evidence.Backend))
	}
	if cfg.Evidence.Backend == "sqlite" && cfg.Evidence.SQLite.Path == "" {
		problems = append(problems, "evidence.sqlite.path must not be empty for the sqlite backend")
	}
	if cfg.Evidence.SQLite.MaxOpenConns < 1 {
		problems = append(problems, "evidence.sqlite.max_open_conns must be at least 1")
	}
	if cfg.Evidence.SQLite.MaxIdleConns < 0 {
		problems = append(problems, "evidence.sqlite.max_idle_conns must not be negative")
	}
	if cfg.Evidence.Recorder.BufferSize < 1 {
		problems = append(problems, "evidence.recorder.buffer_size must be at least 1")
	}
	if cfg.Evidence.Retention.Days < 0 {
		problems = append(problems, "evidence.retention.days must not be negative")
	}
	if cfg.Evidence.Retention.MaxRecords < 0 {
		problems = append(problems, "evidence.retention.max_records must not be negative")
	}
	if cfg.Evidence.Enabled && cfg.Evidence.Retention.Schedule == "" {
		problems = append(problems, "evidence.retention.schedule must not be empty when evidence is enabled")
	}

	if !validLogLevels[cfg.Telemetry.Logging.Level] {
		problems = append(problems, fmt.Sprintf("telemetry.logging.level %q is not one of: debug, info, warn, error", cfg.Telemetry.Logging.Level))
	}
	if !validLogFormats[cfg.Telemetry.Logging.Format] {
		problems = append(problems, fmt.Sprintf("telemetry.logging.format %q is not one of: json, text", cfg.Telemetry.Logging.Format))
	}
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Namespace == "" {
		problems = append(problems, "telemetry.metrics.namespace must not be empty when metrics are enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
