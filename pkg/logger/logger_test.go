package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	old := Logger.Out
	Logger.SetOutput(&buf)
	defer func() {
		Logger.SetOutput(old)
		_ = Configure("info", "text")
	}()

	if err := Configure("debug", "json"); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if Logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s; want debug", Logger.GetLevel())
	}
	WithField("operation", "sharpen").Debug("convolved")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["operation"] != "sharpen" || entry["msg"] != "convolved" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestConfigureRejectsUnknownValues(t *testing.T) {
	defer func() { _ = Configure("info", "text") }()
	if err := Configure("loud", "text"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if err := Configure("info", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
