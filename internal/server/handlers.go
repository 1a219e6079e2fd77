package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/credo/internal/extract"
	"github.com/hyperjump/credo/internal/models"
	"github.com/hyperjump/credo/internal/pipeline"
)

// handleAnalyze is the main analysis endpoint: multipart bodies carry an
// uploaded document, JSON bodies carry a url or text request.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.handleDocumentAnalysis(w, r)
		return
	}
	s.handleTextOrURLAnalysis(w, r)
}

func (s *Server) handleTextOrURLAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}
	kind := strings.ToLower(strings.TrimSpace(req.Type))
	if kind == "" || req.Data == "" {
		s.respondError(w, http.StatusBadRequest,
			`Invalid request format. Expected: {"type": "url|text", "data": "content"}`)
		return
	}

	var input pipeline.Input
	switch kind {
	case "url":
		s.logger.Debug("processing URL analysis", zap.String("url", req.Data))
		input = pipeline.URLInput(req.Data)
	case "text":
		s.logger.Debug("processing direct text analysis")
		input = pipeline.TextInput(req.Data)
	default:
		s.respondError(w, http.StatusBadRequest, `Invalid analysis type. Must be either "url" or "text"`)
		return
	}

	result, err := s.coordinator.Run(r.Context(), input)
	if err != nil {
		s.respondExtractionError(w, err)
		return
	}

	report, raw, err := s.analyzer.Analyze(r.Context(), result.Text)
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Analysis failed",
			"details": err.Error(),
		})
		return
	}

	resp := s.reportResponse(r, result, report, raw)
	if kind == "url" {
		resp["original_input"] = req.Data
	} else {
		resp["original_input"] = result.Preview
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocumentAnalysis(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.config.Upload.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large. Maximum size is %dMB", maxBytes/(1024*1024)))
			return
		}
		s.respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		s.respondError(w, http.StatusBadRequest, "No file selected")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.logger.Error("reading upload failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	s.logger.Debug("document analysis request",
		zap.String("filename", header.Filename),
		zap.String("content_type", header.Header.Get("Content-Type")),
		zap.Int("bytes", len(content)))

	result, err := s.coordinator.Run(r.Context(),
		pipeline.DocumentInput(content, header.Filename, header.Header.Get("Content-Type")))
	if err != nil {
		s.respondExtractionError(w, err)
		return
	}

	report, raw, err := s.analyzer.Analyze(r.Context(), result.Text)
	if err != nil {
		s.logger.Error("analysis failed", zap.String("filename", header.Filename), zap.Error(err))
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Analysis failed",
			"details": err.Error(),
		})
		return
	}

	resp := s.reportResponse(r, result, report, raw)
	resp["document_info"] = models.DocumentInfo{
		Filename:       header.Filename,
		FileType:       string(result.Format),
		TextLength:     utf8.RuneCountInString(result.Text),
		ContentPreview: result.Preview,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// reportResponse assembles the common success payload and persists the report.
// Persistence failure is logged, never surfaced; the analysis already succeeded.
func (s *Server) reportResponse(r *http.Request, result *pipeline.Result, report *models.Report, raw []byte) map[string]interface{} {
	resp := map[string]interface{}{
		"credibility_score": report.CredibilityScore,
		"summary_of_claims": report.SummaryOfClaims,
		"analysis":          report.Analysis,
		"analysis_type":     string(result.Channel),
	}
	if s.storage == nil {
		return resp
	}
	rec := &models.ReportRecord{
		ID:               uuid.NewString(),
		Channel:          string(result.Channel),
		Format:           string(result.Format),
		Preview:          result.Preview,
		CredibilityScore: report.CredibilityScore,
		Summary:          report.SummaryOfClaims,
		Report:           raw,
	}
	if err := s.storage.SaveReport(r.Context(), rec); err != nil {
		s.logger.Warn("failed to persist report", zap.Error(err))
		return resp
	}
	resp["report_id"] = rec.ID
	return resp
}

// respondExtractionError maps typed pipeline failures to a 400 with the
// user-actionable message; anything untyped is an internal error.
func (s *Server) respondExtractionError(w http.ResponseWriter, err error) {
	var xerr *extract.Error
	if errors.As(err, &xerr) {
		s.logger.Debug("extraction rejected", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, xerr.Message())
		return
	}
	s.logger.Error("extraction failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "Failed to process request")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"service":           "credo credibility analyzer",
		"api_configured":    s.config.Analysis.APIKey() != "",
		"supported_formats": extract.SupportedExtensions(),
		"max_file_size":     fmt.Sprintf("%dMB", s.config.Upload.MaxBytes/(1024*1024)),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service":     "credo credibility analyzer",
		"description": "AI-powered tool for detecting misinformation and analyzing content credibility",
		"endpoints": map[string]string{
			"/analyze":             "POST - Analyze text, URL, or document for credibility",
			"/health":              "GET - Health check",
			"/api/v1/reports":      "GET - List recent analysis reports",
			"/api/v1/reports/{id}": "GET - Fetch a stored analysis report",
		},
		"supported_formats": map[string]interface{}{
			"text":      "Direct text input",
			"url":       "Web articles and news content",
			"documents": extract.SupportedExtensions(),
		},
	})
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "Report history is not enabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.storage.ListReports(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	count, err := s.storage.CountReports(r.Context())
	if err != nil {
		s.logger.Error("counting reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []*models.ReportRecord{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"reports": recs, "total": count})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		s.respondError(w, http.StatusNotImplemented, "Report history is not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := s.storage.GetReport(r.Context(), id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "Report not found")
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
