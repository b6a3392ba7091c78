package logger

import (
    "bytes"
    "encoding/json"
    "testing"

    "github.com/dt-jamiem/delivery-planning-tracker/internal/config"
)

func TestNewWritesJSONOutsideDev(t *testing.T) {
    var buf bytes.Buffer
    l := newWith(config.Config{AppEnv: "prod", LogLevel: "warn"}, &buf)
    l.Info().Msg("dropped")
    l.Warn().Str("team", "DBA").Msg("kept")

    var line map[string]any
    if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil { t.Fatalf("expected a single json line, got %q: %v", buf.String(), err) }
    if line["message"] != "kept" || line["team"] != "DBA" || line["service"] != "capacity-planning" {
        t.Fatalf("unexpected log line %v", line)
    }
}

func TestNewFallsBackToInfo(t *testing.T) {
    var buf bytes.Buffer
    l := newWith(config.Config{AppEnv: "prod", LogLevel: "loud"}, &buf)
    l.Debug().Msg("hidden")
    if buf.Len() != 0 { t.Fatalf("debug should be filtered, got %q", buf.String()) }
}
