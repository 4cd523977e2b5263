package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn record missing from output")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("audit started", "audit_id", "20260830_120000_abcd1234")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "audit started" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["audit_id"] != "20260830_120000_abcd1234" {
		t.Errorf("unexpected audit_id: %v", record["audit_id"])
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}, nil); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("provider configured", "api_key", "sk-ant-secret123", "model", "claude-3-5-haiku-20241022")

	out := buf.String()
	if strings.Contains(out, "sk-ant-secret123") {
		t.Error("api_key value leaked into log output")
	}
	if !strings.Contains(out, redactedValue) {
		t.Error("expected redaction marker in output")
	}
	if !strings.Contains(out, "claude-3-5-haiku-20241022") {
		t.Error("non-sensitive value should pass through")
	}
}
