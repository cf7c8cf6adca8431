package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

//nolint:paralleltest // mutates the default logger
func TestSetupJSONTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer

	SetupJSONTo(&buf, slog.LevelWarn, "service", "wallet-api")

	slog.Info("dropped")
	slog.Warn("kept", "session_id", "cs_1")

	var rec map[string]any

	err := json.Unmarshal(buf.Bytes(), &rec)
	if err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}

	if rec["msg"] != "kept" || rec["service"] != "wallet-api" || rec["session_id"] != "cs_1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
