package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLogger, prevLevel, prevFormat := log.Logger, zerolog.GlobalLevel(), zerolog.TimeFieldFormat
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.TimeFieldFormat = prevFormat
	})
}

func TestSetup_JSONComponent(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	if err := install(&buf, zerolog.DebugLevel, LogConfig{Format: "json"}); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	l := WithComponent("pipeline")
	l.Debug().Str("field", "Header").Msg("field complete")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "pipeline" || entry["field"] != "Header" || entry["message"] != "field complete" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestSetup_LevelFilters(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	if err := install(&buf, zerolog.WarnLevel, LogConfig{Format: "json"}); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	l := GetLogger()
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("level filtering failed: %q", buf.String())
	}
}

func TestSetup_File(t *testing.T) {
	restoreGlobals(t)

	path := filepath.Join(t.TempDir(), "ocr.log")
	closer, err := Setup(LogConfig{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	l := WithComponent("test")
	l.Info().Msg("to file")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestSetup_Invalid(t *testing.T) {
	restoreGlobals(t)

	tests := []LogConfig{
		{Level: "loud"},
		{Level: "info", Format: "xml"},
		{Level: "info", Output: filepath.Join(t.TempDir(), "missing", "x.log")},
	}
	for _, cfg := range tests {
		if _, err := Setup(cfg); err == nil {
			t.Errorf("Setup(%+v) should fail", cfg)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Output != "stderr" || cfg.Level != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
