package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

type captureWriter struct {
	buf bytes.Buffer
}

func (c *captureWriter) Write(p []byte) (int, error) { return c.buf.Write(p) }
func (c *captureWriter) Sync() error                 { return nil }

func TestLoggerFiltersBelowLevel(t *testing.T) {
	capture := &captureWriter{}
	logger := &Logger{level: WarnLevel, writer: capture, fields: map[string]any{}}

	logger.Info("hidden")
	logger.Warn("visible")

	if bytes.Contains(capture.buf.Bytes(), []byte("hidden")) {
		t.Fatalf("info line should have been filtered: %s", capture.buf.String())
	}
	if !bytes.Contains(capture.buf.Bytes(), []byte("visible")) {
		t.Fatalf("warn line missing: %s", capture.buf.String())
	}
}

func TestLoggerEmitsStructuredFields(t *testing.T) {
	capture := &captureWriter{}
	logger := &Logger{level: DebugLevel, writer: capture, fields: map[string]any{}}

	logger.With(String("mode", "faraday")).Info("tick", Float64("flux", 1.5), Int("turns", 10))

	var payload map[string]any
	if err := json.Unmarshal(capture.buf.Bytes(), &payload); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if payload["message"] != "tick" || payload["level"] != "info" {
		t.Fatalf("unexpected envelope %+v", payload)
	}
	if payload["mode"] != "faraday" || payload["flux"] != 1.5 || payload["turns"] != float64(10) {
		t.Fatalf("fields missing %+v", payload)
	}
	if _, ok := payload["timestamp"]; !ok {
		t.Fatalf("timestamp missing %+v", payload)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"":        InfoLevel,
		"warning": WarnLevel,
		"ERROR":   ErrorLevel,
	}
	for raw, want := range cases {
		got, err := parseLevel(raw)
		if err != nil || got != want {
			t.Fatalf("parseLevel(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Fatalf("unknown level should error")
	}
}
