package fts

import (
	"strings"
	"testing"
	"time"
)

func TestExpandQueryAppliesSynonyms(t *testing.T) {
	got := expandQuery("k8s deployment")

	for _, want := range []string{"k8s", "kubernetes", "deployment"} {
		if !strings.Contains(got, want) {
			t.Errorf("expandQuery(%q) = %q, missing %q", "k8s deployment", got, want)
		}
	}
}

func TestExpandQueryEmptyPassesThrough(t *testing.T) {
	if got := expandQuery(""); got != "" {
		t.Errorf("expandQuery(%q) = %q, want unchanged", "", got)
	}
}

func TestBoostedQueryFieldsFollowsPriorityOrder(t *testing.T) {
	want := "title^4 summary^3 raw_text^2 url^1 domain^1"

	if got := boostedQueryFields(); got != want {
		t.Errorf("boostedQueryFields() = %q, want %q", got, want)
	}
}

func TestParseSolrTime(t *testing.T) {
	got := parseSolrTime("2026-03-01T12:30:00Z")
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("parseSolrTime = %v, want %v", got, want)
	}

	if !parseSolrTime("").IsZero() {
		t.Error("parseSolrTime(\"\") should be zero")
	}

	if !parseSolrTime("not a date").IsZero() {
		t.Error("parseSolrTime on garbage should be zero")
	}
}
