// Package fts is the abstract full-text index capability (C7):
// configurable fields, ranking rules, and synonym-expanded search over
// indexed documents. Concrete adapters live alongside this file.
package fts

import (
	"context"
	"errors"
	"time"
)

// ErrApplyTimeout is returned when an index write does not become
// searchable within the configured apply deadline.
var ErrApplyTimeout = errors.New("index apply timed out")

const applyTimeout = 30 * time.Second

// SearchableFields is the priority order used when matching a query
// against document text.
var SearchableFields = []string{"title", "summary", "raw_text", "url", "domain"}

// DisplayedFields are the fields returned to callers; raw_text is
// deliberately excluded to keep result payloads small.
var DisplayedFields = []string{"id", "url", "domain", "title", "summary", "status", "quality_score", "created_at"}

// FilterableFields are the fields a search call may restrict on.
var FilterableFields = []string{"domain", "status"}

// RankingRules is the ordered list of signals applied when scoring
// matches, most significant first.
var RankingRules = []string{
	"words",
	"typo",
	"proximity",
	"attribute",
	"sort",
	"quality_score:desc",
	"exactness",
}

const (
	summaryCropChars = 200
	rawTextCropChars = 300
)

// IndexPayload is the projection of a document row sent to the index.
// Kept distinct from store.Document so displayed fields can change
// without touching storage writes.
type IndexPayload struct {
	ID           string
	URL          string
	Domain       string
	Title        string
	Summary      string
	RawText      string
	Status       string
	QualityScore float64
	CreatedAt    time.Time
}

// SearchHit is one ranked result: displayed fields, a ranking score,
// and a cropped snippet.
type SearchHit struct {
	ID           string
	URL          string
	Domain       string
	Title        string
	Summary      string
	Status       string
	QualityScore float64
	CreatedAt    time.Time
	Score        float64
	Snippet      string
}

// FullTextIndex is the capability consumed by the crawler worker pool
// (writes) and the query pipeline (reads).
type FullTextIndex interface {
	// Configure applies field, ranking, and synonym configuration.
	// Idempotent: safe to call on every startup.
	Configure(ctx context.Context) error

	// AddDocuments upserts a batch by id, waiting for the write to
	// become searchable up to an internal deadline.
	AddDocuments(ctx context.Context, docs []IndexPayload) error

	// DeleteDocument removes a single document by id.
	DeleteDocument(ctx context.Context, id string) error

	// Search returns a page of hits ranked per RankingRules, plus an
	// estimated total match count.
	Search(ctx context.Context, query string, limit, offset int) ([]SearchHit, int64, error)

	// Count returns the number of documents currently indexed.
	Count(ctx context.Context) (int64, error)
}

// crop trims s to at most n runes, appending an ellipsis when
// truncated, without splitting a multi-byte rune.
func crop(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n]) + "…"
}

// snippetFor chooses the preview text for a hit in order of preference:
// prefer the raw_text crop, then the summary crop, then a fallback.
func snippetFor(rawText, summary string) string {
	if rawText != "" {
		return crop(rawText, rawTextCropChars)
	}

	if summary != "" {
		return crop(summary, summaryCropChars)
	}

	return "No preview available"
}
