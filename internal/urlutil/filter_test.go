package urlutil

import "testing"

func TestIsHTTPScheme(t *testing.T) {
	cases := map[string]bool{
		"https://example.com": true,
		"http://example.com":  true,
		"javascript:void(0)":  false,
		"mailto:a@b.com":      false,
		"":                    false,
		"://bad":              false,
	}

	for in, want := range cases {
		if got := IsHTTPScheme(in); got != want {
			t.Errorf("IsHTTPScheme(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestHasAssetExtension(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a.pdf":          true,
		"https://example.com/a.PNG":          true,
		"https://example.com/a.pdf?x=1":      true,
		"https://example.com/article":        false,
		"https://example.com/style.css#top":  true,
	}

	for in, want := range cases {
		if got := HasAssetExtension(in); got != want {
			t.Errorf("HasAssetExtension(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMatchesSkipPattern(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/login":               true,
		"https://en.wikipedia.org/wiki/Talk:Cats":  true,
		"https://en.wikipedia.org/wiki/Cats":       false,
		"https://example.com/article/oldid=123":    true,
		"https://example.com/article":              false,
	}

	for in, want := range cases {
		if got := MatchesSkipPattern(in); got != want {
			t.Errorf("MatchesSkipPattern(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSameHost(t *testing.T) {
	if !SameHost("https://Example.com/a", "example.com") {
		t.Error("expected same host to match case-insensitively")
	}

	if SameHost("https://blog.example.com/a", "example.com") {
		t.Error("expected subdomain not to match exact-host policy")
	}
}
