package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Options{JSON: true, Debug: true, OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Debug("debug entry")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	if !strings.Contains(string(data), `"step":"debug entry"`) {
		t.Fatalf("expected json debug entry, got %s", data)
	}
}

func TestNewInfoLevelByDefault(t *testing.T) {
	log, err := New(Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if log.Core().Enabled(-1) {
		t.Fatalf("debug level should be disabled without the debug option")
	}
}
