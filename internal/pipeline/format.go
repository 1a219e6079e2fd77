package pipeline

import (
	"strings"

	"github.com/hyperjump/credo/internal/extract"
)

// mimeFormats maps declared document MIME types to formats. Unknown MIME
// types simply produce no match; they are not an error by themselves.
var mimeFormats = map[string]extract.Format{
	"application/pdf":    extract.FormatPDF,
	"application/msword": extract.FormatDOC,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": extract.FormatDOCX,
	"text/plain":      extract.FormatTXT,
	"application/rtf": extract.FormatRTF,
	"text/rtf":        extract.FormatRTF,
}

// DetectFormat classifies an upload by filename extension and declared MIME
// type. The upload is accepted when either one maps to a supported format
// (a mislabeled content type with a correctly named file still passes, and
// vice versa). The dispatch key is always the extension-derived format; the
// MIME type only participates in the accept decision. When the upload is
// accepted on the MIME type alone, FormatUnknown is returned and dispatch
// fails downstream, matching the extension-keyed contract.
func DetectFormat(filename, declaredMIME string) (extract.Format, error) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return extract.FormatUnknown, &extract.Error{
			Kind:     extract.KindUnsupportedFormat,
			Filename: filename,
			Detail:   "filename has no extension",
		}
	}
	extFormat := extract.Format(strings.ToLower(filename[idx+1:]))

	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	mimeFormat := mimeFormats[mime]

	if !extFormat.Supported() && !mimeFormat.Supported() {
		return extract.FormatUnknown, &extract.Error{
			Kind:     extract.KindUnsupportedFormat,
			Filename: filename,
			Detail:   "extension and content type are both unsupported",
		}
	}
	if !extFormat.Supported() {
		return extract.FormatUnknown, nil
	}
	return extFormat, nil
}
