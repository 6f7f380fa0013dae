package fts

import (
	"context"
	"testing"
)

func TestMemoryIndexSearchRanksByFieldWeight(t *testing.T) {
	idx := NewMemory()

	docs := []IndexPayload{
		{ID: "1", Title: "golang tutorial", RawText: "an intro", QualityScore: 1.0},
		{ID: "2", Title: "other", RawText: "golang appears here only", QualityScore: 1.0},
	}

	if err := idx.AddDocuments(context.Background(), docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits, total, err := idx.Search(context.Background(), "golang", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 2 {
		t.Fatalf("expected 2 hits, got %d", total)
	}

	if hits[0].ID != "1" {
		t.Errorf("expected title match to rank first, got %s", hits[0].ID)
	}
}

func TestMemoryIndexSearchExpandsSynonyms(t *testing.T) {
	idx := NewMemory()

	_ = idx.AddDocuments(context.Background(), []IndexPayload{
		{ID: "1", Title: "python basics", QualityScore: 1.0},
	})

	hits, total, err := idx.Search(context.Background(), "py", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 1 || len(hits) != 1 {
		t.Fatalf("expected synonym expansion to find python via py, got %d hits", total)
	}
}

func TestMemoryIndexSearchPagination(t *testing.T) {
	idx := NewMemory()

	for i := 0; i < 5; i++ {
		_ = idx.AddDocuments(context.Background(), []IndexPayload{
			{ID: string(rune('a' + i)), Title: "match", QualityScore: float64(i)},
		})
	}

	hits, total, err := idx.Search(context.Background(), "match", 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}

	if len(hits) != 2 {
		t.Errorf("expected 2 hits on this page, got %d", len(hits))
	}
}

func TestMemoryIndexDeleteDocument(t *testing.T) {
	idx := NewMemory()

	_ = idx.AddDocuments(context.Background(), []IndexPayload{{ID: "1", Title: "gone soon"}})
	_ = idx.DeleteDocument(context.Background(), "1")

	_, total, _ := idx.Search(context.Background(), "gone", 10, 0)
	if total != 0 {
		t.Errorf("expected 0 hits after delete, got %d", total)
	}
}

func TestSnippetForPrefersRawText(t *testing.T) {
	if got := snippetFor("raw", "summary"); got != "raw" {
		t.Errorf("expected raw text preferred, got %q", got)
	}

	if got := snippetFor("", "summary"); got != "summary" {
		t.Errorf("expected summary fallback, got %q", got)
	}

	if got := snippetFor("", ""); got != "No preview available" {
		t.Errorf("expected default fallback, got %q", got)
	}
}
