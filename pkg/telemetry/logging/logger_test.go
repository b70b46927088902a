package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"genoscope-hq/callisto/pkg/config"
)

func TestNew_Formats(t *testing.T) {
	tests := []struct {
		name   string
		cfg    config.LoggingConfig
		wantIn string
	}{
		{"text", config.LoggingConfig{Level: "info", Format: "text"}, "msg=hello"},
		{"json", config.LoggingConfig{Level: "info", Format: "json"}, `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(tt.cfg, &buf)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			logger.Info("hello", "component", "test")
			if got := buf.String(); !strings.Contains(got, tt.wantIn) {
				t.Errorf("output = %q, want substring %q", got, tt.wantIn)
			}
		})
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("quiet")
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("below-level output = %q, want empty", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("output = %q, want warn entry", buf.String())
	}
	if !logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false, want true")
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loudest"}, nil); err == nil {
		t.Error("New accepted invalid level")
	}
	if _, err := New(config.LoggingConfig{Format: "xml"}, nil); err == nil {
		t.Error("New accepted invalid format")
	}
}
