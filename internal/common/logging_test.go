package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")
	logger.Warn().Msg("warn message")
	logger.Error().Msg("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("below-threshold messages should be dropped: %s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error messages should be written: %s", out)
	}
}

func TestLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("bogus", &buf)

	logger.Debug().Msg("debug message")
	logger.Info().Msg("info message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("debug should be dropped at default level: %s", out)
	}
	if !strings.Contains(out, "info message") {
		t.Errorf("info should be written at default level: %s", out)
	}
}

func TestSilentLoggerDiscards(t *testing.T) {
	logger := NewSilentLogger()
	// Must not panic or write anywhere.
	logger.Error().Str("k", "v").Msg("dropped")
}
