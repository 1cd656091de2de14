package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warning", LevelWarn},
		{"warn", LevelWarn},
		{"ERROR", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, TimeFormat: "-"})

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown %d", 1)
	l.Error("shown %d", 2)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("output contains filtered messages: %q", got)
	}
	want := "[WARN] shown 1\n[ERROR] shown 2\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLoggerFieldsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelDebug, Output: &buf, Prefix: "stout", TimeFormat: "-"})
	l := base.WithComponent("batch").WithFields(map[string]any{"step": 3, "op": "insert"})

	l.Info("applied")
	if got, want := buf.String(), "[INFO] stout: applied {component=batch, op=insert, step=3}\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buf.Reset()
	base.Info("plain")
	if strings.Contains(buf.String(), "component") {
		t.Error("derived fields leaked into the parent logger")
	}
}

func TestLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf}).Info("x")
	if !strings.Contains(buf.String(), "T") || !strings.HasSuffix(buf.String(), "[INFO] x\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	if l.Enabled(LevelError) {
		t.Error("Nop logger should be disabled")
	}
	l.Error("nothing")
}
