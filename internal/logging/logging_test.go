package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func bufferLogger(level string) (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := DefaultLogConfig()
	cfg.Level = level
	cfg.Output = &buf
	return NewLoggerWithConfig(cfg), &buf
}

func TestNewLoggerWithConfig_LevelFilter(t *testing.T) {
	logger, buf := bufferLogger("warn")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestNewLoggerWithConfig_NoWriters(t *testing.T) {
	cfg := DefaultLogConfig()
	cfg.Console = false
	cfg.File = false
	logger := NewLoggerWithConfig(cfg)
	// Must not panic or write anywhere.
	logger.Error().Msg("discarded")
}

func TestNewLoggerWithConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "optprice.log")
	cfg := DefaultLogConfig()
	cfg.Console = false
	cfg.File = true
	cfg.FilePath = path
	cfg.Level = "info"

	logger := NewLoggerWithConfig(cfg)
	LogQuote(logger, "lattice", 100, 6.09, 0, time.Millisecond)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	for _, want := range []string{`"event":"quote"`, `"model":"lattice"`, `"message":"Option priced"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %s: %s", want, data)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"loud":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestContextLogger(t *testing.T) {
	if got := FromContext(context.Background()); got.GetLevel() != zerolog.Disabled {
		t.Errorf("missing logger should be a no-op, got level %v", got.GetLevel())
	}

	logger, buf := bufferLogger("debug")
	ctx := WithLogger(context.Background(), WithOperation(logger, "sweep"))
	l := FromContext(ctx)
	l.Debug().Msg("from context")
	if out := buf.String(); !strings.Contains(out, "from context") || !strings.Contains(out, "sweep") {
		t.Errorf("context logger output = %q", out)
	}
}

func TestLogSweep(t *testing.T) {
	logger, buf := bufferLogger("info")
	LogSweep(WithModel(logger, "analytic"), "analytic", 50, 0, time.Millisecond, nil)
	LogSweep(logger, "lattice", 50, 0, time.Millisecond, errors.New("boom"))

	out := buf.String()
	if !strings.Contains(out, "Strike sweep completed") || !strings.Contains(out, "Strike sweep failed") {
		t.Errorf("sweep log output = %q", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("error not logged: %q", out)
	}
}
