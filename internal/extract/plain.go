package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// fallbackEncodings is the ordered list of encodings tried when content is not
// valid UTF-8. The order is fixed; the first successful decode wins. A latin-1
// decode accepts every byte sequence, so the later entries are never reached;
// they stay so the chain, and the attempted list a decode failure reports,
// match the documented fallback order.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"latin-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// extractTXT decodes content as text, trying UTF-8 first and then the fixed
// fallback encoding list.
func (e *Extractor) extractTXT(content []byte, filename string) (string, error) {
	text, err := e.decodeText(content)
	if err != nil {
		return "", &Error{Kind: KindDecodeFailed, Format: FormatTXT, Filename: filename, Err: err}
	}
	out := strings.TrimSpace(text)
	if out == "" {
		return "", &Error{Kind: KindEmptyContent, Format: FormatTXT, Filename: filename}
	}
	return out, nil
}

// decodeText returns content as a string. Valid UTF-8 is returned as-is;
// otherwise each fallback encoding is tried in order and the first successful
// decode is returned. The final error names every attempted encoding.
func (e *Extractor) decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	for _, fe := range fallbackEncodings {
		decoded, err := fe.enc.NewDecoder().Bytes(content)
		if err != nil {
			continue
		}
		e.logger.Debug("decoded text with fallback encoding", zap.String("encoding", fe.name))
		return string(decoded), nil
	}
	attempted := []string{"utf-8"}
	for _, fe := range fallbackEncodings {
		attempted = append(attempted, fe.name)
	}
	return "", fmt.Errorf("no candidate encoding could decode the content (tried %s)", strings.Join(attempted, ", "))
}
