// Package discovery implements the cold-query discovery adapter
// (C12): when a search turns up too few local results, it asks an
// external search surface for candidate URLs to feed back into the
// crawl queue.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	fetchTimeout   = 5 * time.Second
	minPrimaryHits = 3
	maxResults     = 10
)

// Adapter queries a primary external source and, when it comes up
// short, a secondary one, to discover URLs worth crawling for a query
// the local index could not answer well.
type Adapter struct {
	primaryURL   string
	secondaryURL string
	client       *http.Client
	feedParser   *gofeed.Parser
	userAgent    string
}

// New builds an Adapter. Either URL may be empty, in which case that
// source is skipped.
func New(primaryURL, secondaryURL, userAgent string) *Adapter {
	return &Adapter{
		primaryURL:   primaryURL,
		secondaryURL: secondaryURL,
		client:       &http.Client{Timeout: fetchTimeout},
		feedParser:   gofeed.NewParser(),
		userAgent:    userAgent,
	}
}

// FindURLs returns candidate URLs for query, trying the primary
// source first and falling back to the secondary source when the
// primary errored or returned fewer than minPrimaryHits results.
func (a *Adapter) FindURLs(ctx context.Context, query string) ([]string, error) {
	var primary []string

	var primaryErr error

	if a.primaryURL != "" {
		primary, primaryErr = a.search(ctx, a.primaryURL, query)
	}

	if primaryErr == nil && len(primary) >= minPrimaryHits {
		return capResults(primary, maxResults), nil
	}

	if a.secondaryURL == "" {
		if primaryErr != nil {
			return nil, primaryErr
		}

		return capResults(primary, maxResults), nil
	}

	secondary, secondaryErr := a.search(ctx, a.secondaryURL, query)
	if secondaryErr != nil {
		if primaryErr != nil {
			return nil, fmt.Errorf("primary: %w, secondary: %w", primaryErr, secondaryErr)
		}

		return capResults(primary, maxResults), nil
	}

	return capResults(dedupe(append(primary, secondary...)), maxResults), nil
}

func (a *Adapter) search(ctx context.Context, baseURL, query string) ([]string, error) {
	req, err := a.buildRequest(ctx, baseURL, query)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-2xx response from %s: %d", baseURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "xml") || strings.Contains(contentType, "rss") || strings.Contains(contentType, "atom") {
		return a.parseFeedBody(body)
	}

	return extractResultLinks(body)
}

func (a *Adapter) buildRequest(ctx context.Context, baseURL, query string) (*http.Request, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse discovery url: %w", err)
	}

	q := parsed.Query()
	q.Set("q", query)
	parsed.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}

	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	return req, nil
}

func (a *Adapter) parseFeedBody(body []byte) ([]string, error) {
	feed, err := a.feedParser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	urls := make([]string, 0, len(feed.Items))

	for _, item := range feed.Items {
		if item.Link != "" {
			urls = append(urls, item.Link)
		}
	}

	return urls, nil
}

func extractResultLinks(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse result html: %w", err)
	}

	var urls []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}

		if resolved, ok := decodeWrapperURL(href); ok {
			href = resolved
		}

		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			urls = append(urls, href)
		}
	})

	return urls, nil
}

// decodeWrapperURL strips a "/url?q=<target>" redirect wrapper some
// search result pages use, returning the unwrapped target URL.
func decodeWrapperURL(href string) (string, bool) {
	idx := strings.Index(href, "url?q=")
	if idx == -1 {
		return "", false
	}

	rest := href[idx+len("url?q="):]
	if amp := strings.IndexByte(rest, '&'); amp != -1 {
		rest = rest[:amp]
	}

	decoded, err := url.QueryUnescape(rest)
	if err != nil {
		return "", false
	}

	if !strings.HasPrefix(decoded, "http://") && !strings.HasPrefix(decoded, "https://") {
		return "", false
	}

	return decoded, true
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))

	for _, u := range urls {
		if seen[u] {
			continue
		}

		seen[u] = true

		out = append(out, u)
	}

	return out
}

func capResults(urls []string, max int) []string {
	deduped := dedupe(urls)
	if len(deduped) > max {
		return deduped[:max]
	}

	return deduped
}
