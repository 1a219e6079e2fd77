package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/credo/internal/config"
	"github.com/hyperjump/credo/internal/extract"
	"github.com/hyperjump/credo/internal/models"
	"github.com/hyperjump/credo/internal/pipeline"
	"github.com/hyperjump/credo/internal/storage"
	"github.com/hyperjump/credo/internal/web"
)

type stubAnalyzer struct {
	err error
}

func (a *stubAnalyzer) Analyze(_ context.Context, text string) (*models.Report, []byte, error) {
	if a.err != nil {
		return nil, nil, a.err
	}
	report := &models.Report{
		CredibilityScore: 72,
		SummaryOfClaims:  "Claims are broadly plausible.",
		Analysis: models.Analysis{
			OverallAssessment:      "Neutral reporting with sourced statements.",
			ManipulativeTechniques: []models.Technique{},
		},
	}
	raw, _ := json.Marshal(report)
	return report, raw, nil
}

func newTestServer(t *testing.T, analyzer Analyzer) *Server {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.Default()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	limits := pipeline.DefaultLimits()
	wx := web.NewExtractor(2*time.Second, "", limits.MinArticleChars, logger)
	coord := pipeline.NewCoordinator(extract.NewExtractor(logger), wx, limits, logger)
	return NewServer(coord, analyzer, store, cfg, logger)
}

func postJSON(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAnalyzeText(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	handler := srv.Handler()

	text := strings.Repeat("Every claim in this article deserves scrutiny. ", 3)
	payload, _ := json.Marshal(models.AnalyzeRequest{Type: "text", Data: text})
	rec := postJSON(t, handler, string(payload))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(72), body["credibility_score"])
	assert.Equal(t, "text", body["analysis_type"])
	assert.NotEmpty(t, body["report_id"])
	assert.NotEmpty(t, body["summary_of_claims"])
}

func TestAnalyzeText_tooShort(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	rec := postJSON(t, srv.Handler(), `{"type": "text", "data": "way too short"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "too short")
	assert.Contains(t, body["error"], "50")
}

func TestAnalyze_invalidType(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	rec := postJSON(t, srv.Handler(), `{"type": "carrier-pigeon", "data": "some content"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "Invalid analysis type")
}

func TestAnalyze_missingFields(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	for _, body := range []string{`{}`, `{"type": "text"}`, `{"data": "content"}`} {
		rec := postJSON(t, srv.Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestAnalyze_malformedJSON(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	rec := postJSON(t, srv.Handler(), `{not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "No JSON data")
}

func TestAnalyze_analyzerFailure(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{err: errors.New("model unavailable")})
	payload, _ := json.Marshal(models.AnalyzeRequest{
		Type: "text",
		Data: strings.Repeat("enough text to pass the gate. ", 3),
	})
	rec := postJSON(t, srv.Handler(), string(payload))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Analysis failed", decodeBody(t, rec)["error"])
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeDocument(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	content := []byte(strings.Repeat("A document paragraph with substance. ", 4))
	buf, contentType := multipartUpload(t, "report.txt", content)

	req := httptest.NewRequest(http.MethodPost, "/analyze", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "document", body["analysis_type"])

	info, ok := body["document_info"].(map[string]interface{})
	require.True(t, ok, "document_info missing: %v", body)
	assert.Equal(t, "report.txt", info["filename"])
	assert.Equal(t, "txt", info["file_type"])
	assert.NotEmpty(t, info["content_preview"])
}

func TestAnalyzeDocument_noExtension(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	buf, contentType := multipartUpload(t, "README", []byte("plain bytes"))

	req := httptest.NewRequest(http.MethodPost, "/analyze", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "File type not supported")
}

func TestAnalyzeDocument_noFile(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "No file uploaded")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.ElementsMatch(t,
		[]interface{}{"pdf", "doc", "docx", "txt", "rtf"},
		body["supported_formats"])
	assert.Equal(t, "10MB", body["max_file_size"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	handler := srv.Handler()
	origin := srv.config.Server.FrontendOrigin

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", origin)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	// Unknown origins get no CORS headers.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReportsEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	handler := srv.Handler()

	payload, _ := json.Marshal(models.AnalyzeRequest{
		Type: "text",
		Data: strings.Repeat("persist this analysis in the report history. ", 3),
	})
	rec := postJSON(t, handler, string(payload))
	require.Equal(t, http.StatusOK, rec.Code)
	reportID, _ := decodeBody(t, rec)["report_id"].(string)
	require.NotEmpty(t, reportID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["total"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+reportID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/does-not-exist", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, &stubAnalyzer{})
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint not found", decodeBody(t, rec)["error"])
}
