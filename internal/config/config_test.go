package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Port != 8080 {
		t.Errorf("port %d", cfg.Server.Port)
	}
	if cfg.Upload.MaxBytes != 10*1024*1024 {
		t.Errorf("max bytes %d", cfg.Upload.MaxBytes)
	}
	if cfg.Fetch.Timeout() != 10*time.Second {
		t.Errorf("fetch timeout %v", cfg.Fetch.Timeout())
	}
	if cfg.Pipeline.MinTextChars != 50 || cfg.Pipeline.MinArticleChars != 200 || cfg.Pipeline.PreviewChars != 200 {
		t.Errorf("pipeline limits %+v", cfg.Pipeline)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  port: 9999
  frontend_origin: https://app.example.com
analysis:
  model: local-model
  base_url: http://localhost:11434/v1
storage:
  database_path: ./reports.db
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || cfg.Server.Port != 9999 {
		t.Errorf("got %+v", cfg.Server)
	}
	if cfg.Server.FrontendOrigin != "https://app.example.com" {
		t.Errorf("origin %q", cfg.Server.FrontendOrigin)
	}
	if cfg.Analysis.Model != "local-model" {
		t.Errorf("model %q", cfg.Analysis.Model)
	}
	// ./ paths are resolved relative to the config file.
	if cfg.Storage.DatabasePath != filepath.Join(dir, "reports.db") {
		t.Errorf("db path %q", cfg.Storage.DatabasePath)
	}
	// Unset values still get defaults.
	if cfg.Pipeline.MinTextChars != 50 {
		t.Errorf("min text chars %d", cfg.Pipeline.MinTextChars)
	}
}

func TestLoad_missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFrontendOriginEnvOverride(t *testing.T) {
	t.Setenv("FRONTEND_ORIGIN", "https://override.example.com")
	cfg := Default()
	if cfg.Server.FrontendOrigin != "https://override.example.com" {
		t.Errorf("origin %q", cfg.Server.FrontendOrigin)
	}
}

func TestAPIKeyEnv(t *testing.T) {
	t.Setenv("CREDO_API_KEY", "credo-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	if got := (AnalysisConfig{}).APIKey(); got != "credo-key" {
		t.Errorf("CREDO_API_KEY should win: %q", got)
	}
	t.Setenv("CREDO_API_KEY", "")
	if got := (AnalysisConfig{}).APIKey(); got != "openai-key" {
		t.Errorf("OPENAI_API_KEY fallback: %q", got)
	}
}
