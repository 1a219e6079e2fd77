// Package config provides configuration loading and structs for the credo server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. It is constructed once
// at process start and treated as immutable from then on.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Upload   UploadConfig   `yaml:"upload"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// FrontendOrigin is the single origin allowed by CORS. The
	// FRONTEND_ORIGIN environment variable overrides it.
	FrontendOrigin string `yaml:"frontend_origin"`
}

// UploadConfig holds document upload limits.
type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// FetchConfig holds article fetching settings.
type FetchConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	UserAgent      string `yaml:"user_agent"`
}

// Timeout returns the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// AnalysisConfig holds the analysis model settings. The API key is never read
// from YAML; see APIKey.
type AnalysisConfig struct {
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the analysis call timeout as a duration.
func (a AnalysisConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// APIKey returns the analysis backend key from the environment:
// CREDO_API_KEY first, then OPENAI_API_KEY. Empty means not configured.
func (a AnalysisConfig) APIKey() string {
	if key := os.Getenv("CREDO_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// StorageConfig holds the report history database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// PipelineConfig holds sufficiency gates and preview size for the extraction
// pipeline.
type PipelineConfig struct {
	MinTextChars    int `yaml:"min_text_chars"`
	MinArticleChars int `yaml:"min_article_chars"`
	PreviewChars    int `yaml:"preview_chars"`
}

// Default returns a configuration with all defaults applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults and environment overrides. Returns an error if the file cannot be
// read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		cfg.Server.FrontendOrigin = origin
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
