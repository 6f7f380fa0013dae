// Package robots fetches, parses, and memoizes robots.txt disallow
// rules per host.
package robots

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const fetchTimeout = 5 * time.Second

// agentState is the tagged variant tracking which User-agent block a
// parser line currently belongs to. Kept local to Parse so there is
// no global mutable parser state.
type agentState int

const (
	stateNone agentState = iota
	stateStar
	stateSpecific
	stateOther
)

// entry is the cached, parsed result for one host.
type entry struct {
	disallow []string
}

// Cache memoizes parsed robots.txt rules per host behind a read-mostly
// lock: reads are concurrent, writes happen once per new host.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	client    *http.Client
	userAgent string
}

// New creates a Cache that fetches robots.txt with the given user
// agent, used both as the HTTP UA header and to match Specific blocks.
func New(userAgent string) *Cache {
	return &Cache{
		entries:   make(map[string]entry),
		userAgent: userAgent,
		client:    &http.Client{Timeout: fetchTimeout},
	}
}

// Allowed reports whether rawURL may be fetched under the cached
// disallow rules for its host, fetching and parsing robots.txt on
// first request to a new host.
func (c *Cache) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true
	}

	host := strings.ToLower(u.Host)

	c.mu.RLock()
	e, ok := c.entries[host]
	c.mu.RUnlock()

	if !ok {
		e = c.fetchAndParse(ctx, u.Scheme, host)

		c.mu.Lock()
		c.entries[host] = e
		c.mu.Unlock()
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, prefix := range e.disallow {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return false
		}
	}

	return true
}

// fetchAndParse retrieves scheme://host/robots.txt. Any fetch failure
// or non-2xx response is treated permissively: an empty disallow list.
func (c *Cache) fetchAndParse(ctx context.Context, scheme, host string) entry {
	if scheme == "" {
		scheme = "https"
	}

	reqURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return entry{}
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return entry{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entry{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return entry{}
	}

	return entry{disallow: Parse(string(body), c.userAgent)}
}

// Parse walks robots.txt line by line, tracking the currently
// addressed user-agent as a tagged variant, and returns the effective
// disallow list: specific-agent rules if non-empty, else the `*`
// rules.
func Parse(body, userAgent string) []string {
	ourToken := strings.ToLower(firstToken(userAgent))

	var (
		state         = stateNone
		starRules     []string
		specificRules []string
	)

	for _, rawLine := range strings.Split(body, "\n") {
		line := stripComment(rawLine)
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		key, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "user-agent":
			agent := strings.ToLower(strings.TrimSpace(value))

			switch {
			case agent == "*":
				state = stateStar
			case ourToken != "" && agent == ourToken:
				state = stateSpecific
			default:
				state = stateOther
			}
		case "disallow":
			path := strings.TrimSpace(value)

			switch state {
			case stateStar:
				starRules = append(starRules, path)
			case stateSpecific:
				specificRules = append(specificRules, path)
			case stateNone, stateOther:
				// No active agent block we care about; ignore.
			}
		}
	}

	if len(specificRules) > 0 {
		return specificRules
	}

	return starRules
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}

	return line
}

func splitDirective(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}

	return line[:idx], line[idx+1:], true
}

func firstToken(userAgent string) string {
	fields := strings.Fields(userAgent)
	if len(fields) == 0 {
		return ""
	}

	tok := fields[0]
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}

	return tok
}
