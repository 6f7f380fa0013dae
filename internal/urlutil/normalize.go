// Package urlutil normalizes and filters URLs for the crawler and index.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyURL is returned when Normalize is given an empty string.
var ErrEmptyURL = errors.New("cannot normalize empty URL")

// ErrMissingSchemeOrHost is returned when a URL has no scheme or host.
var ErrMissingSchemeOrHost = errors.New("URL must have both scheme and host")

// Normalize canonicalizes a URL: lowercase scheme and host,
// drop the fragment, and otherwise leave the URL verbatim (trailing
// slash is preserved as given).
func Normalize(rawURL string) (string, error) {
	if rawURL == "" {
		return "", ErrEmptyURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", rawURL, err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrMissingSchemeOrHost
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""

	return parsed.String(), nil
}

// Domain returns the lowercased host component of a canonicalized URL.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(parsed.Hostname())
}
