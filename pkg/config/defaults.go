package config

import "time"

// Default values for configuration fields.
const (
	// Corpus defaults
	DefaultCorpusPath     = "./rules.yaml"
	DefaultCorpusDebounce = 500 * time.Millisecond

	// Evidence defaults
	DefaultEvidenceBackend          = "sqlite"
	DefaultEvidenceSQLitePath       = "data/evidence.db"
	DefaultEvidenceMaxOpenConns     = 10
	DefaultEvidenceMaxIdleConns     = 5
	DefaultEvidenceBusyTimeout      = 5 * time.Second
	DefaultEvidenceBufferSize       = 1000
	DefaultEvidenceWriteTimeout     = 5 * time.Second
	DefaultEvidenceRetentionDays    = 90
	DefaultEvidenceRetentionCron    = "0 3 * * *"
	DefaultEvidenceRetentionRecords = int64(0)

	// Telemetry defaults
	DefaultLoggingLevel    = "info"
	DefaultLoggingFormat   = "text"
	DefaultMetricsNamespace = "callisto"
	DefaultMetricsSubsystem = "interpret"
	DefaultMetricsListen    = ":9090"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Corpus defaults
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = DefaultCorpusPath
	}
	if cfg.Corpus.Debounce == 0 {
		cfg.Corpus.Debounce = DefaultCorpusDebounce
	}

	// Evidence defaults
	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}
	if cfg.Evidence.SQLite.Path == "" {
		cfg.Evidence.SQLite.Path = DefaultEvidenceSQLitePath
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = DefaultEvidenceMaxOpenConns
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = DefaultEvidenceMaxIdleConns
	}
	if cfg.Evidence.SQLite.BusyTimeout == 0 {
		cfg.Evidence.SQLite.BusyTimeout = DefaultEvidenceBusyTimeout
	}
	if cfg.Evidence.Recorder.BufferSize == 0 {
		cfg.Evidence.Recorder.BufferSize = DefaultEvidenceBufferSize
	}
	if cfg.Evidence.Recorder.WriteTimeout == 0 {
		cfg.Evidence.Recorder.WriteTimeout = DefaultEvidenceWriteTimeout
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = DefaultEvidenceRetentionDays
	}
	if cfg.Evidence.Retention.Schedule == "" {
		cfg.Evidence.Retention.Schedule = DefaultEvidenceRetentionCron
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.Listen == "" {
		cfg.Telemetry.Metrics.Listen = DefaultMetricsListen
	}
}

// Default returns a Config populated with every default value. It is what
// LoadConfig would produce from an empty file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
