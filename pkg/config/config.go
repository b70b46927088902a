// Package config defines callisto's configuration model and YAML loading.
//
// Configuration is loaded from a YAML file, filled in with defaults,
// optionally overridden by CALLISTO_* environment variables, and validated.
// Environment variables always take precedence over file values.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Evidence  EvidenceConfig  `yaml:"evidence"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CorpusConfig controls where rule corpora are loaded from.
type CorpusConfig struct {
	// Path is a rule-corpus YAML file or a directory of them.
	Path string `yaml:"path"`

	// Watch enables hot reload when corpus files change on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is how long to wait after a filesystem event before
	// reloading, coalescing editor write bursts. Default: 500ms
	Debounce time.Duration `yaml:"debounce"`

	// Extended enables the extended rule dialect (MIN/MEAN accumulators,
	// nested score lists). Default: false
	Extended bool `yaml:"extended"`
}

// EvidenceConfig controls interpretation evidence recording.
type EvidenceConfig struct {
	// Enabled turns evidence recording on. Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Recorder  RecorderConfig  `yaml:"recorder"`
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures the SQLite evidence backend.
type SQLiteConfig struct {
	// Path is the database file path. Default: "data/evidence.db"
	Path string `yaml:"path"`

	// MaxOpenConns limits open connections. Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle connections. Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the SQLite busy timeout. Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig configures the asynchronous evidence recorder.
type RecorderConfig struct {
	// BufferSize is the in-flight record buffer; writes beyond it are
	// dropped rather than blocking interpretation. Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// WriteTimeout bounds a single storage write. Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RetentionConfig configures evidence retention pruning.
type RetentionConfig struct {
	// Days is the retention window; records older than this are pruned.
	// Zero disables age-based pruning. Default: 90
	Days int `yaml:"days"`

	// Schedule is a cron expression for scheduled pruning.
	// Default: "0 3 * * *" (03:00 daily)
	Schedule string `yaml:"schedule"`

	// MaxRecords caps the total record count; the oldest records beyond
	// the cap are pruned. Zero disables the cap. Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig groups logging and metrics settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metric registration.
type MetricsConfig struct {
	// Enabled turns metric collection on. Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric namespace. Default: "callisto"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem. Default: "interpret"
	Subsystem string `yaml:"subsystem"`

	// Listen is the address the /metrics endpoint binds to in watch mode.
	// Default: ":9090"
	Listen string `yaml:"listen"`
}
