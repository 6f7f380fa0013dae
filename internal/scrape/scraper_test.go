package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScrapeExtractsTitleAndText(t *testing.T) {
	html := `<html><head><title> My Page </title></head><body>
		<nav><a href="/a">nav link</a></nav>
		<article><p>Hello world, this is content.</p></article>
		<footer>copyright 2026</footer>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	s := New("test-agent", 0)

	page, err := s.Scrape(context.Background(), srv.URL, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.Title != "My Page" {
		t.Errorf("Title = %q, want %q", page.Title, "My Page")
	}

	if strings.Contains(page.Text, "nav link") {
		t.Errorf("expected nav text excluded, got %q", page.Text)
	}

	if strings.Contains(page.Text, "copyright") {
		t.Errorf("expected footer text excluded, got %q", page.Text)
	}

	if !strings.Contains(page.Text, "Hello world") {
		t.Errorf("expected article text included, got %q", page.Text)
	}
}

func TestScrapeRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := New("test-agent", 0)

	_, err := s.Scrape(context.Background(), srv.URL, 1<<20)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestScrapeRejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := New("test-agent", 0)

	_, err := s.Scrape(context.Background(), srv.URL, 1<<20)
	if err == nil {
		t.Fatal("expected error for non-HTML content type")
	}
}

func TestScrapeRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer srv.Close()

	s := New("test-agent", 0)

	_, err := s.Scrape(context.Background(), srv.URL, 10)
	if err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestScrapeEmptyExtraction(t *testing.T) {
	html := `<html><head><title>Empty</title></head><body><nav>only nav</nav></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	s := New("test-agent", 0)

	_, err := s.Scrape(context.Background(), srv.URL, 1<<20)
	if err == nil {
		t.Fatal("expected EmptyExtraction error")
	}
}

func TestIsNoiseMatchesClassAttribute(t *testing.T) {
	html := `<html><body><div class="sidebar-widget"><p>noise</p></div><p>keep me</p></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	defer srv.Close()

	s := New("test-agent", 0)

	page, err := s.Scrape(context.Background(), srv.URL, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(page.Text, "noise") {
		t.Errorf("expected sidebar text excluded, got %q", page.Text)
	}

	if !strings.Contains(page.Text, "keep me") {
		t.Errorf("expected plain paragraph included, got %q", page.Text)
	}
}
