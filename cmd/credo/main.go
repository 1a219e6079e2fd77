// Package main is the credo CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/credo/internal/analysis"
	"github.com/hyperjump/credo/internal/config"
	"github.com/hyperjump/credo/internal/extract"
	"github.com/hyperjump/credo/internal/pipeline"
	"github.com/hyperjump/credo/internal/server"
	"github.com/hyperjump/credo/internal/storage"
	"github.com/hyperjump/credo/internal/web"
	"github.com/hyperjump/credo/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/credo/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development), then the default
// location; if neither exists, built-in defaults are used so the CLI runs
// without any config file. An explicitly given path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(fallback); err == nil {
				return config.Load(fallback)
			}
		}
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

func main() {
	// .env carries the analysis API key in development; absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "reports":
		runReports()
	case "version", "--version", "-v":
		fmt.Printf("credo version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Analysis.APIKey() == "" {
		logger.Error("no analysis API key configured; set CREDO_API_KEY or OPENAI_API_KEY")
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open report storage", zap.Error(err))
	}
	defer store.Close()

	coord := buildCoordinator(cfg, logger)
	analyzer := buildAnalyzer(cfg, logger)
	srv := server.NewServer(coord, analyzer, store, cfg, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	text := fs.String("text", "", "analyze pasted text")
	rawURL := fs.String("url", "", "analyze a web article URL")
	file := fs.String("file", "", "analyze a document file (pdf, doc, docx, txt, rtf)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	input, err := buildInput(*text, *rawURL, *file)
	if err != nil {
		fmt.Printf("%v\n", err)
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Analysis.APIKey() == "" {
		fmt.Println("No analysis API key configured; set CREDO_API_KEY or OPENAI_API_KEY.")
		os.Exit(1)
	}

	coord := buildCoordinator(cfg, logger)
	analyzer := buildAnalyzer(cfg, logger)

	ctx := context.Background()
	result, err := coord.Run(ctx, input)
	if err != nil {
		var xerr *extract.Error
		if errors.As(err, &xerr) {
			fmt.Printf("Error: %s\n", xerr.Message())
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	report, _, err := analyzer.Analyze(ctx, result.Text)
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	out := map[string]interface{}{
		"credibility_score": report.CredibilityScore,
		"summary_of_claims": report.SummaryOfClaims,
		"analysis":          report.Analysis,
		"analysis_type":     string(result.Channel),
		"content_preview":   result.Preview,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

// runReports lists recent analysis reports from a running server and prints
// the JSON response. The server address is derived from the config unless
// -addr overrides it.
func runReports() {
	fs := flag.NewFlagSet("reports", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	addr := fs.String("addr", "", "server base URL (default derived from config)")
	limit := fs.Int("limit", 20, "maximum number of reports to list")
	_ = fs.Parse(os.Args[2:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	base := *addr
	if base == "" {
		base = serverBaseURL(cfg)
	}

	body, err := fetchReports(base, *limit)
	if err != nil {
		fmt.Printf("Failed to list reports: %v\n", err)
		os.Exit(1)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		_, _ = os.Stdout.Write(body)
		fmt.Println()
		return
	}
	fmt.Println(out.String())
}

// serverBaseURL derives the API address from the configured listen host and
// port. A wildcard listen host is dialed as localhost.
func serverBaseURL(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
}

// fetchReports calls the report history endpoint and returns the raw JSON body.
func fetchReports(baseURL string, limit int) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v1/reports?limit=%d", strings.TrimSuffix(baseURL, "/"), limit)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// buildInput converts the analyze flags into a pipeline input; exactly one of
// text, url, and file must be set.
func buildInput(text, rawURL, file string) (pipeline.Input, error) {
	set := 0
	for _, v := range []string{text, rawURL, file} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return pipeline.Input{}, errors.New("exactly one of -text, -url, or -file is required")
	}
	switch {
	case text != "":
		return pipeline.TextInput(text), nil
	case rawURL != "":
		return pipeline.URLInput(rawURL), nil
	default:
		content, err := os.ReadFile(file)
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("could not read %s: %w", file, err)
		}
		return pipeline.DocumentInput(content, filepath.Base(file), ""), nil
	}
}

func buildCoordinator(cfg *config.Config, logger *zap.Logger) *pipeline.Coordinator {
	extractor := extract.NewExtractor(logger)
	webx := web.NewExtractor(cfg.Fetch.Timeout(), cfg.Fetch.UserAgent, cfg.Pipeline.MinArticleChars, logger)
	limits := pipeline.Limits{
		MinTextChars:    cfg.Pipeline.MinTextChars,
		MinArticleChars: cfg.Pipeline.MinArticleChars,
		PreviewChars:    cfg.Pipeline.PreviewChars,
	}
	return pipeline.NewCoordinator(extractor, webx, limits, logger)
}

func buildAnalyzer(cfg *config.Config, logger *zap.Logger) *analysis.Analyzer {
	client := analysis.NewClient(cfg.Analysis.APIKey(), cfg.Analysis.BaseURL)
	return analysis.NewAnalyzer(client, cfg.Analysis.Model, cfg.Analysis.Timeout(), logger)
}

func printUsage() {
	fmt.Println(`credo - content credibility analyzer

Usage:
  credo server  [-config path] [-debug]          start the HTTP API
  credo analyze (-text s | -url u | -file path)  one-shot analysis to stdout
  credo reports [-limit n] [-addr url]           list recent reports from a running server
  credo version                                  print version
  credo help                                     show this help`)
}
