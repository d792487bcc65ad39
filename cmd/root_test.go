package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/interview-prep/internal/ai"
)

func TestGetConfigAppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Gemini.Model != "gemini-2.5-flash" || config.Gemini.MaxQuotaWait != 30*time.Second {
		t.Fatalf("unexpected gemini defaults: %+v", config.Gemini)
	}
	if config.Analysis.Scoring != ai.ScoringSampling() {
		t.Fatalf("unexpected scoring defaults: %+v", config.Analysis.Scoring)
	}
	if config.Server.Listen != ":8080" {
		t.Fatalf("unexpected listen address: %q", config.Server.Listen)
	}
}

func TestGetConfigKeepsListenDefaultWithBoundFlag(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	bindServeFlags()

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Server.Listen != ":8080" {
		t.Fatalf("expected default listen address, got %q", config.Server.Listen)
	}

	viper.Set("server.listen", "127.0.0.1:9000")
	config, err = getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Server.Listen != "127.0.0.1:9000" {
		t.Fatalf("expected configured listen address, got %q", config.Server.Listen)
	}
}

func TestGetConfigReadsYAML(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "interview-prep.yaml")
	content := `gemini:
  model: gemini-2.5-pro
  max-quota-wait: 45s
analysis:
  strategy: single
  questions:
    temperature: 0.7
feedback:
  sqlite: feedback.db
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("reading config: %v", err)
	}

	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Gemini.Model != "gemini-2.5-pro" || config.Gemini.MaxQuotaWait != 45*time.Second {
		t.Fatalf("unexpected gemini config: %+v", config.Gemini)
	}
	if config.Gemini.MaxRetries != 3 {
		t.Fatalf("expected default retries kept, got %d", config.Gemini.MaxRetries)
	}
	if config.Analysis.Strategy != "single" || config.Analysis.Questions.Temperature != 0.7 {
		t.Fatalf("unexpected analysis config: %+v", config.Analysis)
	}
	if config.Analysis.Questions.TopK != ai.QuestionsSampling().TopK {
		t.Fatalf("expected untouched sampling fields to keep defaults")
	}
	if config.Feedback.SQLite != "feedback.db" || config.Feedback.File != "" {
		t.Fatalf("unexpected feedback config: %+v", config.Feedback)
	}
}

func TestRedactedHidesAPIKey(t *testing.T) {
	config := defaultConfig()
	config.Gemini.APIKey = "secret"

	if redacted(config).Gemini.APIKey != "***" {
		t.Fatal("expected api key to be redacted")
	}
	if config.Gemini.APIKey != "secret" {
		t.Fatal("redaction must not modify the original")
	}
}
