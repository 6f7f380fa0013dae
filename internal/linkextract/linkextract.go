// Package linkextract parses anchors out of HTML and resolves them
// against a base URL, applying the same-domain and noise filters
// the crawler enforces on discovered links.
package linkextract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/corvidsearch/notice/internal/urlutil"
)

// Extract returns the deduplicated, same-domain, filtered set of links
// found in html, resolved against baseURL.
func Extract(html io.Reader, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	baseHost := urlutil.Domain(baseURL)
	if baseHost == "" {
		return nil, fmt.Errorf("parse base URL %q: no host", baseURL)
	}

	seen := make(map[string]bool)

	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}

		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}

		resolved, err := urlutil.ResolveReference(baseURL, href)
		if err != nil {
			return
		}

		if !urlutil.IsHTTPScheme(resolved) {
			return
		}

		normalized, err := urlutil.Normalize(resolved)
		if err != nil {
			return
		}

		if !urlutil.SameHost(normalized, baseHost) {
			return
		}

		if !urlutil.IsCrawlable(normalized) {
			return
		}

		if rel, ok := sel.Attr("rel"); ok && strings.Contains(strings.ToLower(rel), "nofollow") {
			return
		}

		if seen[normalized] {
			return
		}

		seen[normalized] = true

		links = append(links, normalized)
	})

	return links, nil
}
