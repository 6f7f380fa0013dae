// Package scrape fetches a URL and extracts its title and visible text,
// stripping navigation, ad, and boilerplate noise.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	maxRedirects = 5

	defaultTimeout = 30 * time.Second
)

// Errors a Scraper can return. Callers (the crawler worker pool)
// classify these without needing to parse message strings.
var (
	ErrBadStatus          = errors.New("non-2xx response")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrBodyTooLarge       = errors.New("body exceeds byte budget")
	ErrEmptyExtraction    = errors.New("no visible text extracted")
	ErrTooManyRedirects   = errors.New("too many redirects")
)

// Page is a scraped and extracted page. Description carries the
// meta description when the page declares one; it supplements very
// short body text but never replaces it.
type Page struct {
	URL         string
	Title       string
	Description string
	Text        string
	RawHTML     []byte
	FetchedAt   time.Time
}

// Scraper fetches pages with a shared, pooled HTTP client.
type Scraper struct {
	client    *http.Client
	userAgent string
}

// New creates a Scraper with the given user agent and per-request
// timeout (0 means the 30s default).
func New(userAgent string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Scraper{
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}

				return nil
			},
		},
	}
}

// Scrape fetches rawURL and extracts its content, rejecting responses
// that exceed maxBytes or are not text/html.
func (s *Scraper) Scrape(ctx context.Context, rawURL string, maxBytes int64) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrBadStatus, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "text/html") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, ct)
	}

	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("%w: declared length %d", ErrBodyTooLarge, resp.ContentLength)
	}

	limited := io.LimitReader(resp.Body, maxBytes+1)

	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if int64(len(body)) > maxBytes {
		return nil, fmt.Errorf("%w: actual length exceeds %d", ErrBodyTooLarge, maxBytes)
	}

	decoded := decodeToUTF8(body, resp.Header.Get("Content-Type"))

	title, description, text, err := extract(decoded)
	if err != nil {
		return nil, err
	}

	return &Page{
		URL:         rawURL,
		Title:       title,
		Description: description,
		Text:        text,
		RawHTML:     body,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// decodeToUTF8 converts body to UTF-8 using the charset declared in
// contentType or sniffed from the document. Returns body unchanged
// when detection or decoding fails.
func decodeToUTF8(body []byte, contentType string) []byte {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return body
	}

	return decoded
}

// noiseSelector matches elements (and ancestors of elements) that never
// contribute to extracted visible text.
const noiseSelector = "nav, header, footer, aside, script, style, noscript"

var noiseClassPattern = regexp.MustCompile(`(?i)nav|navbar|menu|footer|header|sidebar|aside|ad|ads|advertisement|cookie|popup|modal`)

const contentSelector = "p, h1, h2, h3, h4, h5, h6, li, article, td, th, blockquote, pre, code, figcaption"

// extract parses body and returns the trimmed title, the meta
// description, and the joined, noise-filtered visible text of
// content-bearing elements.
func extract(body []byte) (title, description, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", "", "", fmt.Errorf("parse HTML: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		description = strings.TrimSpace(content)
	}

	var pieces []string

	doc.Find(contentSelector).Each(func(_ int, sel *goquery.Selection) {
		if isNoise(sel) {
			return
		}

		piece := strings.TrimSpace(sel.Text())
		if piece != "" {
			pieces = append(pieces, piece)
		}
	})

	text = strings.TrimSpace(strings.Join(pieces, "\n"))
	if text == "" {
		return "", "", "", ErrEmptyExtraction
	}

	return title, description, text, nil
}

// isNoise reports whether sel or any of its ancestors matches the
// noise tag selector or a noise-flavored class/id attribute.
func isNoise(sel *goquery.Selection) bool {
	for node := sel; node.Length() > 0; node = node.Parent() {
		if node.Is(noiseSelector) {
			return true
		}

		if class, ok := node.Attr("class"); ok && noiseClassPattern.MatchString(class) {
			return true
		}

		if id, ok := node.Attr("id"); ok && noiseClassPattern.MatchString(id) {
			return true
		}

		if node.Is("html") {
			break
		}
	}

	return false
}
