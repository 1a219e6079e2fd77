// Package models defines wire and domain structures for analysis requests and reports.
package models

import (
	"encoding/json"
	"time"
)

// AnalyzeRequest is the JSON body of the text/url analysis channel.
// Type is "url" or "text", case-insensitive.
type AnalyzeRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Technique is one manipulative technique the model found in the text.
type Technique struct {
	Technique    string `json:"technique"`
	Explanation  string `json:"explanation"`
	FlaggedQuote string `json:"flagged_quote"`
}

// Analysis holds the model's qualitative findings.
type Analysis struct {
	OverallAssessment      string      `json:"overall_assessment"`
	ManipulativeTechniques []Technique `json:"manipulative_techniques"`
}

// Report is the structured credibility report returned by the analysis model.
type Report struct {
	CredibilityScore int      `json:"credibility_score"`
	SummaryOfClaims  string   `json:"summary_of_claims"`
	Analysis         Analysis `json:"analysis"`
}

// DocumentInfo is provenance metadata attached to document analyses.
type DocumentInfo struct {
	Filename       string `json:"filename"`
	FileType       string `json:"file_type"`
	TextLength     int    `json:"text_length"`
	ContentPreview string `json:"content_preview"`
}

// ReportRecord is a persisted analysis report with its provenance.
type ReportRecord struct {
	ID               string          `json:"id"`
	Channel          string          `json:"channel"`
	Format           string          `json:"format,omitempty"`
	Preview          string          `json:"preview"`
	CredibilityScore int             `json:"credibility_score"`
	Summary          string          `json:"summary"`
	Report           json.RawMessage `json:"report"`
	CreatedAt        time.Time       `json:"created_at"`
}
