package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "corpus:\n  path: testdata/rules.yaml\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Corpus.Path != "testdata/rules.yaml" {
		t.Errorf("Corpus.Path = %q, want testdata/rules.yaml", cfg.Corpus.Path)
	}
	if cfg.Corpus.Debounce != DefaultCorpusDebounce {
		t.Errorf("Corpus.Debounce = %v, want %v", cfg.Corpus.Debounce, DefaultCorpusDebounce)
	}
	if cfg.Evidence.Backend != "sqlite" {
		t.Errorf("Evidence.Backend = %q, want sqlite", cfg.Evidence.Backend)
	}
	if cfg.Evidence.Retention.Days != DefaultEvidenceRetentionDays {
		t.Errorf("Retention.Days = %d, want %d", cfg.Evidence.Retention.Days, DefaultEvidenceRetentionDays)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("Logging = %q/%q, want info/text", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}
	if cfg.Telemetry.Metrics.Namespace != "callisto" {
		t.Errorf("Metrics.Namespace = %q, want callisto", cfg.Telemetry.Metrics.Namespace)
	}
}

func TestLoadConfig_Explicit(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
corpus:
  path: /etc/callisto/rules
  watch: true
  debounce: 2s
  extended: true
evidence:
  enabled: true
  backend: memory
  retention:
    days: 14
    schedule: "30 2 * * *"
telemetry:
  logging:
    level: debug
    format: json
  metrics:
    enabled: true
`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Corpus.Watch || !cfg.Corpus.Extended {
		t.Error("Corpus.Watch/Extended not honored")
	}
	if cfg.Corpus.Debounce != 2*time.Second {
		t.Errorf("Corpus.Debounce = %v, want 2s", cfg.Corpus.Debounce)
	}
	if cfg.Evidence.Backend != "memory" {
		t.Errorf("Evidence.Backend = %q, want memory", cfg.Evidence.Backend)
	}
	if cfg.Evidence.Retention.Days != 14 || cfg.Evidence.Retention.Schedule != "30 2 * * *" {
		t.Errorf("Retention = %d/%q, want 14/30 2 * * *",
			cfg.Evidence.Retention.Days, cfg.Evidence.Retention.Schedule)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			"bad backend",
			"evidence:\n  backend: redis\n",
			"evidence.backend",
		},
		{
			"bad log level",
			"telemetry:\n  logging:\n    level: verbose\n",
			"telemetry.logging.level",
		},
		{
			"bad log format",
			"telemetry:\n  logging:\n    format: xml\n",
			"telemetry.logging.format",
		},
		{
			"negative retention",
			"evidence:\n  retention:\n    days: -1\n",
			"evidence.retention.days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("LoadConfig succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("CALLISTO_CORPUS_PATH", "/override/rules.yaml")
	t.Setenv("CALLISTO_CORPUS_WATCH", "true")
	t.Setenv("CALLISTO_EVIDENCE_BACKEND", "memory")
	t.Setenv("CALLISTO_LOGGING_LEVEL", "warn")
	t.Setenv("CALLISTO_METRICS_ENABLED", "true")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, "corpus:\n  path: file.yaml\n"))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Corpus.Path != "/override/rules.yaml" {
		t.Errorf("Corpus.Path = %q, want /override/rules.yaml", cfg.Corpus.Path)
	}
	if !cfg.Corpus.Watch {
		t.Error("Corpus.Watch = false, want true")
	}
	if cfg.Evidence.Backend != "memory" {
		t.Errorf("Evidence.Backend = %q, want memory", cfg.Evidence.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoadConfigWithEnvOverrides_InvalidAfterOverride(t *testing.T) {
	t.Setenv("CALLISTO_EVIDENCE_BACKEND", "redis")

	_, err := LoadConfigWithEnvOverrides(writeConfig(t, "corpus:\n  path: file.yaml\n"))
	if err == nil {
		t.Fatal("LoadConfigWithEnvOverrides succeeded, want validation error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate(Default()) failed: %v", err)
	}
}
