// Package web fetches article URLs and isolates the main body text from page chrome.
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// DefaultUserAgent is a browser-like identifier; many news sites refuse
// requests that carry an obvious bot agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultTimeout bounds the single GET request.
const DefaultTimeout = 10 * time.Second

// chromeSelector matches elements removed wholesale before any text extraction.
const chromeSelector = "script, style, nav, footer, aside, header"

// contentSelector matches class names that commonly wrap article bodies.
const contentSelector = ".content, .post-content, .entry-content"

// Extractor fetches a URL and applies a main-content heuristic to the page.
type Extractor struct {
	client    *http.Client
	userAgent string
	minChars  int
	logger    *zap.Logger
}

// NewExtractor returns an article extractor. minChars is the floor below which
// extracted text is treated as unusable (likely paywall or complex layout).
func NewExtractor(timeout time.Duration, userAgent string, minChars int, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		minChars:  minChars,
		logger:    logger,
	}
}

// FetchAndExtract fetches rawURL and returns the article body text. ok is
// false for every unusable-content outcome: invalid URL shape, network or
// timeout failure, non-2xx status, unparseable HTML, or extracted text below
// the article floor. Callers cannot act differently on those causes, so they
// collapse into one signal; the specific cause is logged.
func (x *Extractor) FetchAndExtract(ctx context.Context, rawURL string) (text string, ok bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		x.logger.Debug("invalid article URL", zap.String("url", rawURL))
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		x.logger.Debug("could not build request", zap.String("url", rawURL), zap.Error(err))
		return "", false
	}
	req.Header.Set("User-Agent", x.userAgent)

	resp, err := x.client.Do(req)
	if err != nil {
		x.logger.Warn("article fetch failed", zap.String("url", rawURL), zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		x.logger.Warn("article fetch returned non-2xx status",
			zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
		return "", false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		x.logger.Warn("could not parse article HTML", zap.String("url", rawURL), zap.Error(err))
		return "", false
	}

	text = extractArticleText(doc)
	if utf8.RuneCountInString(text) < x.minChars {
		// Likely a paywall or a layout the paragraph heuristic cannot read;
		// a genuine article this short is indistinguishable from that.
		x.logger.Warn("extracted article text is too short",
			zap.String("url", rawURL), zap.Int("chars", utf8.RuneCountInString(text)))
		return "", false
	}
	return text, true
}

// extractArticleText strips page chrome, then looks for the main content in
// priority order: an article element, a main element, or a known content
// class. Paragraphs inside the winner are joined with single spaces; when no
// candidate matches, every paragraph in the document is used.
func extractArticleText(doc *goquery.Document) string {
	doc.Find(chromeSelector).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find(contentSelector).First()
	}

	paragraphs := doc.Find("p")
	if root.Length() > 0 {
		paragraphs = root.Find("p")
	}

	var parts []string
	paragraphs.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}
