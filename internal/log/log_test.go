package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "warn", false)
	defer Init("info")

	Info("hidden")
	Warn("shown", "backend", "lola")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "backend=lola") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, "debug", true)
	defer Init("info")

	With("body_id", "P0000074A04S91M00036").Debug("frame")

	if !strings.Contains(buf.String(), `"body_id":"P0000074A04S91M00036"`) {
		t.Errorf("unexpected JSON output: %q", buf.String())
	}
}
