package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		logLevel string
		want     LogLevel
	}{
		{"defaults to info", "", "", LevelInfo},
		{"LOG_LEVEL debug", "", "debug", LevelDebug},
		{"LOG_LEVEL warn", "", "warn", LevelWarn},
		{"LOG_LEVEL warning alias", "", "warning", LevelWarn},
		{"LOG_LEVEL error", "", "error", LevelError},
		{"LOG_LEVEL case insensitive", "", "ERROR", LevelError},
		{"LOG_LEVEL garbage means info", "", "verbose", LevelInfo},
		{"DEBUG=1 wins", "1", "error", LevelDebug},
		{"DEBUG=true wins", "true", "", LevelDebug},
		{"DEBUG=on wins", "on", "warn", LevelDebug},
		{"DEBUG=0 defers to LOG_LEVEL", "0", "warn", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEBUG", tt.debug)
			t.Setenv("LOG_LEVEL", tt.logLevel)
			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogLevelOrdering(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("levels out of order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

// setThreshold forces the package threshold for a test, restoring it after.
// setup() has already run by the time any test mutates the level, so the
// sync.Once is a no-op from here on.
func setThreshold(t *testing.T, level LogLevel) {
	t.Helper()
	prev := GetLevel()
	threshold = level
	t.Cleanup(func() { threshold = prev })
}

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestEmitRespectsThreshold(t *testing.T) {
	setThreshold(t, LevelWarn)
	buf := captureOutput(t)

	Debug("scanned %d tracks", 12)
	Info("index rebuilt")
	Warn("slow query: %s", "artists")
	Error("rebuild failed")

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("messages below threshold leaked through:\n%s", out)
	}
	if !strings.Contains(out, "[WARN] slow query: artists") {
		t.Errorf("warn message missing from output:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] rebuild failed") {
		t.Errorf("error message missing from output:\n%s", out)
	}
}

func TestIsDebugEnabled(t *testing.T) {
	setThreshold(t, LevelDebug)
	if !IsDebugEnabled() {
		t.Error("IsDebugEnabled() = false at debug threshold")
	}

	setThreshold(t, LevelInfo)
	if IsDebugEnabled() {
		t.Error("IsDebugEnabled() = true at info threshold")
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset uses fallback", "", 50},
		{"valid value", "100", 100},
		{"non-numeric uses fallback", "abc", 50},
		{"zero uses fallback", "0", 50},
		{"negative uses fallback", "-5", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.value)
			if got := envInt("TEST_ENV_INT", 50); got != tt.want {
				t.Errorf("envInt() = %d, want %d", got, tt.want)
			}
		})
	}
}
