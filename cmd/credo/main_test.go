package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/credo/internal/config"
	"github.com/hyperjump/credo/internal/pipeline"
)

func TestBuildInput(t *testing.T) {
	in, err := buildInput("pasted text", "", "")
	if err != nil {
		t.Fatalf("buildInput: %v", err)
	}
	if in.Channel != pipeline.ChannelText || in.Text != "pasted text" {
		t.Errorf("got %+v", in)
	}

	in, err = buildInput("", "https://example.com/article", "")
	if err != nil {
		t.Fatalf("buildInput: %v", err)
	}
	if in.Channel != pipeline.ChannelURL || in.URL != "https://example.com/article" {
		t.Errorf("got %+v", in)
	}
}

func TestBuildInput_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("file contents"), 0600); err != nil {
		t.Fatal(err)
	}

	in, err := buildInput("", "", path)
	if err != nil {
		t.Fatalf("buildInput: %v", err)
	}
	if in.Channel != pipeline.ChannelDocument || in.Filename != "notes.txt" {
		t.Errorf("got %+v", in)
	}
	if string(in.Content) != "file contents" {
		t.Errorf("content %q", in.Content)
	}
}

func TestBuildInput_exactlyOne(t *testing.T) {
	cases := [][3]string{
		{"", "", ""},
		{"text", "https://example.com", ""},
		{"text", "", "file.txt"},
		{"text", "https://example.com", "file.txt"},
	}
	for _, c := range cases {
		if _, err := buildInput(c[0], c[1], c[2]); err == nil {
			t.Errorf("buildInput(%q, %q, %q) should fail", c[0], c[1], c[2])
		}
	}
}

func TestBuildInput_missingFile(t *testing.T) {
	if _, err := buildInput("", "", filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatal("expected error for unreadable file")
	}
}

func TestServerBaseURL(t *testing.T) {
	cfg := config.Default()
	if got := serverBaseURL(cfg); got != "http://localhost:8080" {
		t.Errorf("wildcard host should dial localhost: %q", got)
	}
	cfg.Server.Host = "10.0.0.5"
	cfg.Server.Port = 9000
	if got := serverBaseURL(cfg); got != "http://10.0.0.5:9000" {
		t.Errorf("got %q", got)
	}
}

func TestFetchReports(t *testing.T) {
	var gotPath, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reports": [], "total": 0}`))
	}))
	defer srv.Close()

	body, err := fetchReports(srv.URL+"/", 5)
	if err != nil {
		t.Fatalf("fetchReports: %v", err)
	}
	if gotPath != "/api/v1/reports" || gotLimit != "5" {
		t.Errorf("request %s?limit=%s", gotPath, gotLimit)
	}
	if !strings.Contains(string(body), `"total"`) {
		t.Errorf("body %s", body)
	}
}

func TestFetchReports_serverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fetchReports(srv.URL, 5); err == nil {
		t.Fatal("expected error for non-200 response")
	}

	srv.Close()
	if _, err := fetchReports(srv.URL, 5); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestLoadConfig_explicitPathMustExist(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit config path should be required to exist")
	}
}

func TestLoadConfig_defaultFallsBack(t *testing.T) {
	cfg, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port == 0 {
		t.Error("defaults not applied")
	}
}
