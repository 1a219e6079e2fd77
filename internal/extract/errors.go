package extract

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why an extraction could not produce usable text.
type ErrorKind int

const (
	// KindUnsupportedFormat means neither the filename extension nor the
	// declared MIME type maps to a supported document format.
	KindUnsupportedFormat ErrorKind = iota
	// KindExtractionFailed means the format-specific parser could not process
	// the bytes (corrupt file, unexpected structure).
	KindExtractionFailed
	// KindEmptyContent means extraction succeeded mechanically but produced
	// nothing after trimming.
	KindEmptyContent
	// KindDecodeFailed means no candidate text encoding could decode the bytes.
	KindDecodeFailed
	// KindURLUnusable covers invalid URL shape, network failure, non-2xx
	// responses, and heuristic extraction below the article floor. The caller
	// cannot act differently on any of them, so they share one kind.
	KindURLUnusable
	// KindTooShort means the trimmed content is below the analysis floor.
	KindTooShort
)

// Error is a typed extraction failure. It is returned as data all the way to
// the transport layer; nothing in the pipeline panics across its boundary.
type Error struct {
	Kind     ErrorKind
	Format   Format
	Filename string
	Detail   string
	MinChars int
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("extract")
	if e.Format != FormatUnknown {
		b.WriteString(" " + string(e.Format))
	}
	if e.Filename != "" {
		b.WriteString(" " + e.Filename)
	}
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-actionable description of the failure, suitable
// for an API error response.
func (e *Error) Message() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		return fmt.Sprintf("File type not supported. Allowed types: %s",
			strings.Join(SupportedExtensions(), ", "))
	case KindExtractionFailed:
		msg := fmt.Sprintf("Failed to extract text from %s file", strings.ToUpper(string(e.Format)))
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		if e.Format == FormatDOC {
			msg += ". Please try converting to DOCX format."
		}
		return msg
	case KindEmptyContent:
		switch e.Format {
		case FormatPDF:
			return "No text could be extracted from the PDF. The document might be image-based or corrupted."
		case FormatDOCX:
			return "No text could be extracted from the Word document."
		case FormatDOC:
			return "No text could be extracted from the DOC file. Please convert to DOCX format."
		case FormatTXT:
			return "The text file appears to be empty."
		case FormatRTF:
			return "No text could be extracted from the RTF file."
		default:
			return "No text could be extracted from the document."
		}
	case KindDecodeFailed:
		return "Could not decode the text file. Please ensure it's a valid text file."
	case KindURLUnusable:
		return "Could not extract content from the provided URL. Please check the URL or try a different one."
	case KindTooShort:
		return fmt.Sprintf("Content is too short for meaningful analysis. Please provide at least %d characters.", e.MinChars)
	default:
		return "Extraction failed."
	}
}
