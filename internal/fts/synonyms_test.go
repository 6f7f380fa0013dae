package fts

import "testing"

func TestExpandSynonymsBidirectional(t *testing.T) {
	expanded := expandSynonyms([]string{"js"})

	found := false

	for _, t2 := range expanded {
		if t2 == "javascript" {
			found = true
		}
	}

	if !found {
		t.Errorf("expected js to expand to javascript, got %v", expanded)
	}
}

func TestExpandSynonymsNoMatchPassesThrough(t *testing.T) {
	expanded := expandSynonyms([]string{"banana"})

	if len(expanded) != 1 || expanded[0] != "banana" {
		t.Errorf("expected unmatched term to pass through unchanged, got %v", expanded)
	}
}
