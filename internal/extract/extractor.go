// Package extract converts document bytes in supported formats into plain text.
package extract

import (
	"os"

	"go.uber.org/zap"
)

// Format is a supported document format, keyed by filename extension.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOC  Format = "doc"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatRTF  Format = "rtf"
	// FormatUnknown is the zero value for inputs that did not resolve to a
	// supported format.
	FormatUnknown Format = ""
)

// Supported reports whether f is one of the five supported document formats.
func (f Format) Supported() bool {
	switch f {
	case FormatPDF, FormatDOC, FormatDOCX, FormatTXT, FormatRTF:
		return true
	}
	return false
}

// SupportedExtensions returns the supported filename extensions in a stable order.
func SupportedExtensions() []string {
	return []string{"pdf", "doc", "docx", "txt", "rtf"}
}

// Extractor extracts plain text from document bytes. Each format has an
// isolated extraction routine sharing the same contract: trim the output and
// fail if nothing remains.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor returns an Extractor logging tolerated faults (skipped PDF
// pages, encoding fallbacks) to logger.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract converts content in the given format into trimmed plain text.
// filename is carried for diagnostics only. The returned error is always a
// *Error.
func (e *Extractor) Extract(content []byte, format Format, filename string) (string, error) {
	switch format {
	case FormatPDF:
		return e.extractPDF(content, filename)
	case FormatDOCX:
		return e.extractDOCX(content, filename)
	case FormatDOC:
		return e.extractDOC(content, filename)
	case FormatTXT:
		return e.extractTXT(content, filename)
	case FormatRTF:
		return e.extractRTF(content, filename)
	default:
		return "", &Error{Kind: KindUnsupportedFormat, Filename: filename, Detail: "no extractor for format"}
	}
}

// ExtractFile reads the file at path and extracts it as format. Used for
// document bytes staged in a scoped temporary file.
func (e *Extractor) ExtractFile(path string, format Format, filename string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: format, Filename: filename, Detail: "could not read staged file", Err: err}
	}
	return e.Extract(content, format, filename)
}
