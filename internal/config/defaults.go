package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.FrontendOrigin == "" {
		cfg.Server.FrontendOrigin = "http://localhost:5173"
	}
	if cfg.Upload.MaxBytes == 0 {
		cfg.Upload.MaxBytes = 10 * 1024 * 1024
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 10
	}
	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gpt-4o-mini"
	}
	if cfg.Analysis.TimeoutSeconds == 0 {
		cfg.Analysis.TimeoutSeconds = 120
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = ".credo/reports.db"
	}
	if cfg.Pipeline.MinTextChars == 0 {
		cfg.Pipeline.MinTextChars = 50
	}
	if cfg.Pipeline.MinArticleChars == 0 {
		cfg.Pipeline.MinArticleChars = 200
	}
	if cfg.Pipeline.PreviewChars == 0 {
		cfg.Pipeline.PreviewChars = 200
	}
}
