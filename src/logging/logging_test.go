package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "text")

	log.Debug("hidden")
	log.Info("visible", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("debug message leaked past info level")
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "key=value") {
		t.Fatalf("unexpected log output: %q", out)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "json")

	log.Warn("careful", "n", 3)
	if !strings.Contains(buf.String(), `"msg":"careful"`) {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}

func TestNoOpLogger(t *testing.T) {
	var log Logger = NoOpLogger{}
	log.Debug("a")
	log.Info("b")
	log.Warn("c")
	log.Error("d", "err", "boom")
}
