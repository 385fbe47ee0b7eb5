package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("default level = %s, want info", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("default pretty = true, want false")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input LogLevel
		want  zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"invalid", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetup_WritesToOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelDebug, Output: buf})

	logger.Debug().Str("page", "0").Msg("fetching page")

	if !strings.Contains(buf.String(), "fetching page") {
		t.Errorf("output missing message: %q", buf.String())
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("mpds-client")
	logger.Info().Msg("retrieval complete")

	output := buf.String()
	if !strings.Contains(output, "mpds-client") {
		t.Errorf("output missing component field: %q", output)
	}
	if !strings.Contains(output, "retrieval complete") {
		t.Errorf("output missing message: %q", output)
	}
}

func TestSetup_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelWarn, Output: buf})

	logger := NewLogger("test")
	logger.Debug().Msg("page progress")
	logger.Info().Msg("batch done")
	logger.Warn().Msg("delay below minimum")

	output := buf.String()
	if strings.Contains(output, "page progress") || strings.Contains(output, "batch done") {
		t.Errorf("messages below warn leaked through: %q", output)
	}
	if !strings.Contains(output, "delay below minimum") {
		t.Errorf("warn message missing: %q", output)
	}
}
