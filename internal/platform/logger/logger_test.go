package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupJSONWithComponent(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	if err := Setup(Config{Level: "warn", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	log := WithComponent("statements")
	log.Info().Msg("dropped")
	log.Warn().Str("employer_no", "A/1").Msg("kept")

	var event map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &event); err != nil {
		t.Fatalf("expected exactly one json event, got %q: %v", buf.String(), err)
	}
	if event["component"] != "statements" || event["employer_no"] != "A/1" || event["message"] != "kept" {
		t.Fatalf("unexpected event %v", event)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
