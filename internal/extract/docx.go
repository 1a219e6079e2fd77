package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
)

// docxDocumentXMLPath is the default path to the main document body inside a .docx zip.
const docxDocumentXMLPath = "word/document.xml"

// contentTypesPath is the path to [Content_Types].xml in OOXML packages.
const contentTypesPath = "[Content_Types].xml"

// docxMainContentType is the content type for the main document in DOCX files.
const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

// partNameRe extracts PartName from Override elements in [Content_Types].xml.
var partNameRe = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)

// partNameRe2 handles the case where ContentType appears before PartName.
var partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

// extractDOCX extracts body paragraphs in document order, each non-empty one
// followed by a newline, then appends table content after all paragraph text:
// per row, each non-empty cell followed by a space, and a newline per row.
func (e *Extractor) extractDOCX(content []byte, filename string) (string, error) {
	docXML, err := readDocumentXML(content)
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: FormatDOCX, Filename: filename, Detail: "not a valid Word document", Err: err}
	}
	body, err := parseDocumentBody(docXML)
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: FormatDOCX, Filename: filename, Detail: "could not parse document body", Err: err}
	}

	var b strings.Builder
	for _, p := range body.paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	for _, table := range body.tables {
		for _, row := range table {
			for _, cell := range row {
				if strings.TrimSpace(cell) == "" {
					continue
				}
				b.WriteString(cell)
				b.WriteByte(' ')
			}
			b.WriteByte('\n')
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &Error{Kind: KindEmptyContent, Format: FormatDOCX, Filename: filename}
	}
	return out, nil
}

// extractDOC is the best-effort path for legacy .doc uploads: the paragraph
// pass of the DOCX extractor, with no table handling. True binary .doc files
// are not zip archives, so this commonly fails; the error guidance asks the
// user to convert to DOCX.
func (e *Extractor) extractDOC(content []byte, filename string) (string, error) {
	docXML, err := readDocumentXML(content)
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: FormatDOC, Filename: filename, Detail: "legacy DOC content could not be read", Err: err}
	}
	body, err := parseDocumentBody(docXML)
	if err != nil {
		return "", &Error{Kind: KindExtractionFailed, Format: FormatDOC, Filename: filename, Detail: "could not parse document body", Err: err}
	}

	var b strings.Builder
	for _, p := range body.paragraphs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &Error{Kind: KindEmptyContent, Format: FormatDOC, Filename: filename}
	}
	return out, nil
}

// readDocumentXML opens content as an OOXML zip and returns the bytes of the
// main document part, located via [Content_Types].xml with a fallback to the
// conventional word/document.xml path.
func readDocumentXML(content []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errors.New("not a zip archive")
	}

	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}

	for _, f := range zr.File {
		if f.Name != docPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(docPath + " not found")
}

// findDocxMainDocumentPath finds the main document path from [Content_Types].xml.
// Returns the path without leading slash, or empty string if not found.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != contentTypesPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return ""
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			_ = rc.Close()
			return ""
		}
		_ = rc.Close()

		content := buf.String()
		// Try both attribute orders
		if matches := partNameRe.FindStringSubmatch(content); len(matches) > 1 {
			return strings.TrimPrefix(matches[1], "/")
		}
		if matches := partNameRe2.FindStringSubmatch(content); len(matches) > 1 {
			return strings.TrimPrefix(matches[1], "/")
		}
		return ""
	}
	return ""
}

// documentBody is the structured content of a word/document.xml body:
// body-level paragraphs in order, and tables as rows of cell texts.
type documentBody struct {
	paragraphs []string
	tables     [][][]string
}

// parseDocumentBody streams the OOXML body, keeping body-level <w:p> text
// separate from table content. Paragraphs inside table cells contribute to
// their cell, not to the paragraph list. Nested table content is folded into
// the enclosing cell.
func parseDocumentBody(docXML []byte) (*documentBody, error) {
	dec := xml.NewDecoder(bytes.NewReader(docXML))

	body := &documentBody{}
	var (
		tableDepth int
		curTable   [][]string
		curRow     []string
		curCell    strings.Builder
		curPara    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
				if tableDepth == 1 {
					curTable = nil
				}
			case "tr":
				if tableDepth == 1 {
					curRow = nil
				}
			case "tc":
				if tableDepth == 1 {
					curCell.Reset()
				}
			case "p":
				if tableDepth == 0 {
					inPara = true
					curPara.Reset()
				}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth == 1 {
					body.tables = append(body.tables, curTable)
				}
				tableDepth--
			case "tr":
				if tableDepth == 1 {
					curTable = append(curTable, curRow)
				}
			case "tc":
				if tableDepth == 1 {
					curRow = append(curRow, strings.TrimSpace(curCell.String()))
				}
			case "p":
				if tableDepth == 0 && inPara {
					body.paragraphs = append(body.paragraphs, curPara.String())
					inPara = false
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tableDepth > 0 {
				curCell.Write(t)
			} else if inPara {
				curPara.Write(t)
			}
		}
	}
	return body, nil
}
