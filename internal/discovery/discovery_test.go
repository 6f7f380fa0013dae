package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultsPage(links ...string) string {
	page := "<html><body>"
	for _, l := range links {
		page += fmt.Sprintf(`<a href="%s">result</a>`, l)
	}

	return page + "</body></html>"
}

func TestFindURLsPrimaryOnly(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rust async", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage(
			"https://a.example.com/1",
			"https://b.example.com/2",
			"https://c.example.com/3",
		))
	}))
	defer primary.Close()

	a := New(primary.URL, "", "test-bot/1.0")

	urls, err := a.FindURLs(context.Background(), "rust async")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://a.example.com/1",
		"https://b.example.com/2",
		"https://c.example.com/3",
	}, urls)
}

func TestFindURLsFallsBackWhenPrimaryThin(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage("https://a.example.com/only"))
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage("https://b.example.com/1", "https://b.example.com/2"))
	}))
	defer secondary.Close()

	a := New(primary.URL, secondary.URL, "test-bot/1.0")

	urls, err := a.FindURLs(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://a.example.com/only",
		"https://b.example.com/1",
		"https://b.example.com/2",
	}, urls)
}

func TestFindURLsDecodesWrapperRedirects(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage(
			"/url?q=https%3A%2F%2Ftarget.example.com%2Fpage&sa=U",
			"https://direct.example.com/a",
			"https://direct.example.com/b",
		))
	}))
	defer primary.Close()

	a := New(primary.URL, "", "test-bot/1.0")

	urls, err := a.FindURLs(context.Background(), "query")
	require.NoError(t, err)
	assert.Contains(t, urls, "https://target.example.com/page")
}

func TestFindURLsDeduplicatesAndCaps(t *testing.T) {
	links := make([]string, 0, 30)
	for i := 0; i < 15; i++ {
		link := fmt.Sprintf("https://site.example.com/%d", i)
		links = append(links, link, link)
	}

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage(links...))
	}))
	defer primary.Close()

	a := New(primary.URL, "", "test-bot/1.0")

	urls, err := a.FindURLs(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, urls, 10)
	assert.Equal(t, "https://site.example.com/0", urls[0])
}

func TestFindURLsParsesFeedResponse(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>results</title>
<item><title>one</title><link>https://feed.example.com/one</link></item>
<item><title>two</title><link>https://feed.example.com/two</link></item>
</channel></rss>`

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	}))
	defer primary.Close()

	a := New(primary.URL, "", "test-bot/1.0")

	urls, err := a.FindURLs(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://feed.example.com/one", "https://feed.example.com/two"}, urls)
}

func TestFindURLsPrimaryErrorUsesSecondary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, resultsPage("https://b.example.com/1"))
	}))
	defer secondary.Close()

	a := New(primary.URL, secondary.URL, "test-bot/1.0")

	urls, err := a.FindURLs(context.Background(), "query")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b.example.com/1"}, urls)
}
