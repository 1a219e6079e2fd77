package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// extractPDF extracts text page by page. A page that cannot be read is logged
// and skipped; the document as a whole fails only when every page together
// yields nothing after trimming. Pages are joined with a newline in page order.
func (e *Extractor) extractPDF(content []byte, filename string) (string, error) {
	r, err := openPDF(content)
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: FormatPDF, Filename: filename, Detail: "could not open document", Err: err}
	}

	total := r.NumPage()
	e.logger.Debug("processing PDF", zap.String("filename", filename), zap.Int("pages", total))

	var pages []string
	skipped := 0
	for i := 1; i <= total; i++ {
		text, err := pageText(r.Page(i))
		if err != nil {
			skipped++
			e.logger.Warn("skipping unreadable PDF page",
				zap.String("filename", filename), zap.Int("page", i), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.logger.Debug("no text on PDF page", zap.String("filename", filename), zap.Int("page", i))
			continue
		}
		pages = append(pages, text)
	}
	if skipped > 0 {
		e.logger.Warn("PDF extracted with skipped pages",
			zap.String("filename", filename), zap.Int("skipped", skipped), zap.Int("pages", total))
	}

	out := strings.TrimSpace(strings.Join(pages, "\n"))
	if out == "" {
		return "", &Error{Kind: KindEmptyContent, Format: FormatPDF, Filename: filename}
	}
	return out, nil
}

// openPDF opens a reader over the raw bytes. The parser panics on some
// malformed cross-reference tables, so the panic is converted to an error here.
func openPDF(content []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("open PDF: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

// pageText extracts the plain text of a single page, converting parser panics
// on malformed content streams into per-page errors.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page text: %v", rec)
		}
	}()
	if page.V.IsNull() {
		return "", fmt.Errorf("page has no content")
	}
	return page.GetPlainText(nil)
}
