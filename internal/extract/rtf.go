package extract

import (
	"strings"

	"github.com/lu4p/cat/rtftxt"
)

// extractRTF converts RTF bytes to plain text. The bytes are read as UTF-8
// with invalid sequences replaced, matching the plain-text reader, before the
// RTF control structure is stripped.
func (e *Extractor) extractRTF(content []byte, filename string) (string, error) {
	text := strings.ToValidUTF8(string(content), "�")
	buf, err := rtftxt.Text(strings.NewReader(text))
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: FormatRTF, Filename: filename, Detail: "could not parse RTF content", Err: err}
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", &Error{Kind: KindEmptyContent, Format: FormatRTF, Filename: filename}
	}
	return out, nil
}
