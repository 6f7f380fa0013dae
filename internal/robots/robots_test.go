package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseSpecificOverridesStar(t *testing.T) {
	body := "User-agent: *\nDisallow: /everyone\n\nUser-agent: NoticeBot\nDisallow: /private\n"

	rules := Parse(body, "NoticeBot/1.0")

	if len(rules) != 1 || rules[0] != "/private" {
		t.Fatalf("expected specific rules only, got %v", rules)
	}
}

func TestParseFallsBackToStar(t *testing.T) {
	body := "User-agent: *\nDisallow: /private\n"

	rules := Parse(body, "NoticeBot/1.0")

	if len(rules) != 1 || rules[0] != "/private" {
		t.Fatalf("expected star rules, got %v", rules)
	}
}

func TestParseIgnoresOtherAgents(t *testing.T) {
	body := "User-agent: SomeOtherBot\nDisallow: /secret\n"

	rules := Parse(body, "NoticeBot/1.0")

	if len(rules) != 0 {
		t.Fatalf("expected no rules apply, got %v", rules)
	}
}

func TestAllowedHonorsDisallowPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer srv.Close()

	c := New("NoticeBot/1.0")

	if !c.Allowed(context.Background(), srv.URL+"/public") {
		t.Error("expected /public to be allowed")
	}

	if c.Allowed(context.Background(), srv.URL+"/private/x") {
		t.Error("expected /private/x to be disallowed")
	}
}

func TestAllowedIsPermissiveOnFetchFailure(t *testing.T) {
	c := New("NoticeBot/1.0")

	if !c.Allowed(context.Background(), "http://127.0.0.1:1/anything") {
		t.Error("expected permissive fallback when robots.txt fetch fails")
	}
}

func TestAllowedIsPermissiveOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("NoticeBot/1.0")

	if !c.Allowed(context.Background(), srv.URL+"/anything") {
		t.Error("expected permissive fallback on non-2xx robots.txt response")
	}
}

func TestAllowedCachesAcrossCalls(t *testing.T) {
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	}))
	defer srv.Close()

	c := New("NoticeBot/1.0")

	c.Allowed(context.Background(), srv.URL+"/a")
	c.Allowed(context.Background(), srv.URL+"/b")

	if hits != 1 {
		t.Errorf("expected robots.txt fetched once, got %d fetches", hits)
	}
}
