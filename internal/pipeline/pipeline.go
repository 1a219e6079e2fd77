// Package pipeline normalizes heterogeneous untrusted input - pasted text, an
// article URL, or an uploaded document - into a single analysis-ready plain
// text string, or a typed failure the caller can report verbatim.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hyperjump/credo/internal/extract"
	"github.com/hyperjump/credo/internal/web"
	"github.com/hyperjump/credo/pkg/utils"
)

// Channel identifies which input variant a request carries.
type Channel string

const (
	ChannelText     Channel = "text"
	ChannelURL      Channel = "url"
	ChannelDocument Channel = "document"
)

// Input is a single request's raw input. Exactly one channel is active;
// the constructor functions keep that invariant.
type Input struct {
	Channel     Channel
	Text        string
	URL         string
	Content     []byte
	Filename    string
	ContentType string
}

// TextInput wraps directly pasted text.
func TextInput(text string) Input {
	return Input{Channel: ChannelText, Text: text}
}

// URLInput wraps a remote article address.
func URLInput(url string) Input {
	return Input{Channel: ChannelURL, URL: url}
}

// DocumentInput wraps uploaded document bytes with the client-declared
// filename and MIME type.
func DocumentInput(content []byte, filename, contentType string) Input {
	return Input{Channel: ChannelDocument, Content: content, Filename: filename, ContentType: contentType}
}

// Result is normalized text with provenance. Text is never empty or pure
// whitespace; Preview is a truncated view with no effect on correctness.
type Result struct {
	Text    string
	Channel Channel
	Format  extract.Format
	Preview string
}

// Limits holds the sufficiency gates and preview size. It is built once from
// configuration at startup and never mutated.
type Limits struct {
	// MinTextChars is the global analysis floor applied to every channel.
	MinTextChars int
	// MinArticleChars is the stricter floor the web extractor applies before
	// the global gate is ever reached. Web text needs a higher floor to
	// exclude link-farm pages.
	MinArticleChars int
	// PreviewChars bounds the provenance preview.
	PreviewChars int
}

// DefaultLimits returns the standard gate values.
func DefaultLimits() Limits {
	return Limits{MinTextChars: 50, MinArticleChars: 200, PreviewChars: 200}
}

// Coordinator is the single entry point of the extraction pipeline. It is
// stateless across requests; every Run is independent.
type Coordinator struct {
	extractor *extract.Extractor
	web       *web.Extractor
	limits    Limits
	tempDir   string
	logger    *zap.Logger
}

// NewCoordinator wires the document extractor and web extractor behind one
// dispatch point. Uploaded bytes are staged under the system temp directory.
func NewCoordinator(ex *extract.Extractor, wx *web.Extractor, limits Limits, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		extractor: ex,
		web:       wx,
		limits:    limits,
		tempDir:   os.TempDir(),
		logger:    logger,
	}
}

// Run consumes in and returns normalized text or a *extract.Error describing
// a reportable failure. Errors never cross this boundary untyped.
func (c *Coordinator) Run(ctx context.Context, in Input) (*Result, error) {
	switch in.Channel {
	case ChannelText:
		text := strings.TrimSpace(in.Text)
		if utf8.RuneCountInString(text) < c.limits.MinTextChars {
			return nil, &extract.Error{Kind: extract.KindTooShort, MinChars: c.limits.MinTextChars}
		}
		return c.result(text, ChannelText, extract.FormatUnknown), nil

	case ChannelURL:
		text, ok := c.web.FetchAndExtract(ctx, in.URL)
		if !ok {
			return nil, &extract.Error{Kind: extract.KindURLUnusable, Detail: in.URL}
		}
		// The extractor's own article floor is stricter than the global gate,
		// so no further sufficiency check is needed here.
		return c.result(strings.TrimSpace(text), ChannelURL, extract.FormatUnknown), nil

	case ChannelDocument:
		return c.runDocument(in)

	default:
		return nil, fmt.Errorf("unknown input channel %q", in.Channel)
	}
}

func (c *Coordinator) runDocument(in Input) (*Result, error) {
	format, err := DetectFormat(in.Filename, in.ContentType)
	if err != nil {
		return nil, err
	}

	path, cleanup, err := c.stageTempFile(in)
	if err != nil {
		return nil, &extract.Error{
			Kind:     extract.KindExtractionFailed,
			Format:   format,
			Filename: in.Filename,
			Detail:   "could not stage uploaded file",
			Err:      err,
		}
	}
	defer cleanup()

	c.logger.Debug("extracting document",
		zap.String("filename", in.Filename), zap.String("format", string(format)),
		zap.Int("bytes", len(in.Content)))

	text, err := c.extractor.ExtractFile(path, format, in.Filename)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(text) < c.limits.MinTextChars {
		return nil, &extract.Error{
			Kind:     extract.KindTooShort,
			Format:   format,
			Filename: in.Filename,
			MinChars: c.limits.MinTextChars,
		}
	}
	return c.result(text, ChannelDocument, format), nil
}

// stageTempFile writes the uploaded bytes to a scoped temporary file for
// extractors that read from disk. The returned cleanup runs on every exit
// path; removal failure is logged but never escalated.
func (c *Coordinator) stageTempFile(in Input) (string, func(), error) {
	suffix := ""
	if idx := strings.LastIndex(in.Filename, "."); idx >= 0 {
		suffix = in.Filename[idx:]
	}
	f, err := os.CreateTemp(c.tempDir, "credo-*"+suffix)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to clean up temporary file", zap.String("path", path), zap.Error(err))
		}
	}
	if _, err := f.Write(in.Content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (c *Coordinator) result(text string, ch Channel, format extract.Format) *Result {
	return &Result{
		Text:    text,
		Channel: ch,
		Format:  format,
		Preview: utils.Truncate(text, c.limits.PreviewChars),
	}
}
