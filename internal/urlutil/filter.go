package urlutil

import (
	"net/url"
	"strings"
)

// IsHTTPScheme reports whether rawURL has an http or https scheme.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	scheme := strings.ToLower(parsed.Scheme)

	return scheme == "http" || scheme == "https"
}

// SameHost reports whether targetURL's host exactly equals baseHost
// (case-insensitive). The same-domain policy is exact-host,
// not subdomain-inclusive.
func SameHost(targetURL, baseHost string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	return strings.EqualFold(parsed.Hostname(), baseHost)
}

// ResolveReference resolves ref against base, returning an absolute URL.
func ResolveReference(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}

	return baseURL.ResolveReference(refURL).String(), nil
}

var assetExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".css", ".js",
	".zip", ".tar", ".gz", ".mp3", ".mp4", ".avi", ".exe", ".dmg",
	".iso", ".xml", ".json", ".woff", ".woff2", ".ttf", ".eot",
}

var skipSubstrings = []string{
	"/login", "/signup", "/register", "/logout", "/admin", "/api/",
	"/feed", "/rss",
	"/wiki/Special:", "/wiki/Talk:", "/wiki/User:",
	"Category:", "Template:", "Help:", "File:", "Portal:", "Draft:", "Module:",
	"/w/index.php", "action=edit", "action=history", "oldid=", "printable=yes", "#cite",
}

// HasAssetExtension reports whether the URL's path ends in one of the
// skip-listed non-content extensions (query/fragment stripped first).
func HasAssetExtension(rawURL string) bool {
	path := rawURL
	if i := strings.IndexAny(path, "?#"); i != -1 {
		path = path[:i]
	}

	lower := strings.ToLower(path)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}

	return false
}

// MatchesSkipPattern reports whether the URL matches one of the noise
// patterns the crawler skips (auth pages, API endpoints, wiki noise).
func MatchesSkipPattern(rawURL string) bool {
	for _, pattern := range skipSubstrings {
		if strings.Contains(rawURL, pattern) {
			return true
		}
	}

	return false
}

// IsCrawlable applies every link filter except the same-domain
// check, which the caller applies with the base host in hand.
func IsCrawlable(rawURL string) bool {
	if !IsHTTPScheme(rawURL) {
		return false
	}

	if HasAssetExtension(rawURL) || MatchesSkipPattern(rawURL) {
		return false
	}

	return true
}
