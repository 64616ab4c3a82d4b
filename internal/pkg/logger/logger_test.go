package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func captureEntry(t *testing.T, emit func()) map[string]interface{} {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)
	emit()
	if buf.Len() == 0 {
		t.Fatal("expected a log entry")
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	return entry
}

func TestInfoEntryShape(t *testing.T) {
	entry := captureEntry(t, func() {
		Info("snapshots fetched", "account_id", "act_1", "rows", 42)
	})
	if entry["level"] != "INFO" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["msg"] != "snapshots fetched" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["account_id"] != "act_1" {
		t.Errorf("account_id = %v", entry["account_id"])
	}
	// Numeric fields keep their JSON type
	if entry["rows"] != float64(42) {
		t.Errorf("rows = %v (%T)", entry["rows"], entry["rows"])
	}
}

func TestCredentialFieldMasked(t *testing.T) {
	entry := captureEntry(t, func() {
		Warn("token refresh failed", "access_token", "EAABsbCS1iHgBO7zQx")
	})
	if entry["access_token"] != "EAAB***" {
		t.Errorf("access_token = %v, want masked prefix", entry["access_token"])
	}
}

func TestEmbeddedEmailMasked(t *testing.T) {
	entry := captureEntry(t, func() {
		Info("lead sync", "detail", "contact john.doe@example.com opted in")
	})
	got, _ := entry["detail"].(string)
	if strings.Contains(got, "john.doe@example.com") {
		t.Fatalf("raw address leaked: %q", got)
	}
	if !strings.Contains(got, "jo***@example.com") {
		t.Errorf("detail = %q, want masked address", got)
	}
}

func TestDebugBelowLevelDropped(t *testing.T) {
	SetLevel(INFO)
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	defer SetOutput(prev)
	Debug("noise")
	if buf.Len() != 0 {
		t.Fatalf("DEBUG entry emitted at INFO level: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DEBUG,
		"WARN":    WARN,
		"warning": WARN,
		"Error":   ERROR,
		"":        INFO,
		"bogus":   INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
