package fts

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryIndex is an in-process FullTextIndex used in tests and as a
// degraded-mode fallback: a simple term-overlap scorer with no
// external dependency, mirroring the deterministic mock adapters used
// elsewhere in this codebase.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]IndexPayload
}

// NewMemory creates an empty MemoryIndex.
func NewMemory() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]IndexPayload)}
}

// Configure is a no-op: there is no external schema to apply.
func (m *MemoryIndex) Configure(_ context.Context) error {
	return nil
}

// AddDocuments upserts docs by id.
func (m *MemoryIndex) AddDocuments(_ context.Context, docs []IndexPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range docs {
		m.docs[d.ID] = d
	}

	return nil
}

// DeleteDocument removes a document by id.
func (m *MemoryIndex) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.docs, id)

	return nil
}

// Search scores documents by synonym-expanded term overlap across
// SearchableFields, in priority order, then by quality_score
// descending (RankingRules' tie-break).
func (m *MemoryIndex) Search(_ context.Context, query string, limit, offset int) ([]SearchHit, int64, error) {
	terms := expandSynonyms(tokenize(query))

	m.mu.RLock()
	defer m.mu.RUnlock()

	var scored []SearchHit

	for _, d := range m.docs {
		score := scoreDocument(d, terms)
		if score <= 0 {
			continue
		}

		scored = append(scored, SearchHit{
			ID:           d.ID,
			URL:          d.URL,
			Domain:       d.Domain,
			Title:        d.Title,
			Summary:      d.Summary,
			Status:       d.Status,
			QualityScore: d.QualityScore,
			CreatedAt:    d.CreatedAt,
			Score:        score,
			Snippet:      snippetFor(d.RawText, d.Summary),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}

		return scored[i].QualityScore > scored[j].QualityScore
	})

	total := int64(len(scored))

	if offset >= len(scored) {
		return nil, total, nil
	}

	end := offset + limit
	if end > len(scored) {
		end = len(scored)
	}

	return scored[offset:end], total, nil
}

// Count returns the number of indexed documents.
func (m *MemoryIndex) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.docs)), nil
}

// fieldWeights mirrors SearchableFields' declared priority order.
var fieldWeights = map[string]float64{
	"title":    4,
	"summary":  3,
	"raw_text": 2,
	"url":      1,
	"domain":   1,
}

func scoreDocument(d IndexPayload, terms []string) float64 {
	fields := map[string]string{
		"title":    d.Title,
		"summary":  d.Summary,
		"raw_text": d.RawText,
		"url":      d.URL,
		"domain":   d.Domain,
	}

	var score float64

	for field, weight := range fieldWeights {
		text := strings.ToLower(fields[field])

		for _, term := range terms {
			if term != "" && strings.Contains(text, term) {
				score += weight
			}
		}
	}

	if score > 0 {
		score += d.QualityScore
	}

	return score
}

func tokenize(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}
