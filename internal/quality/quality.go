// Package quality computes the deterministic quality score used to
// rank documents.
package quality

import "strings"

const (
	base = 1.0

	domainBonus   = 0.5
	socialPenalty = -0.3

	longBonus    = 0.5
	mediumBonus  = 0.3
	shortPenalty = -0.3

	titlePresentBonus = 0.1

	minScore = 0.5
	maxScore = 3.0
)

var trustedDomainSubstrings = []string{"wikipedia.org", "britannica.com", "github.com", "stackoverflow.com"}

var trustedDomainContains = []string{".gov", ".edu"}

var penalizedDomains = []string{"twitter.com", "x.com", "facebook.com", "instagram.com"}

// Score is a pure function of (url, title, text): deterministic and
// straightforward to unit-test. Result is clamped to [0.5, 3.0].
func Score(domain, title, text string) float64 {
	score := base

	score += domainAdjustment(domain)
	score += lengthAdjustment(len([]rune(text)))

	if title != "" {
		score += titlePresentBonus
	}

	return clamp(score)
}

func domainAdjustment(domain string) float64 {
	d := strings.ToLower(domain)

	for _, s := range trustedDomainSubstrings {
		if strings.Contains(d, s) {
			return domainBonus
		}
	}

	if strings.HasPrefix(d, "docs.") {
		return domainBonus
	}

	for _, s := range trustedDomainContains {
		if strings.Contains(d, s) {
			return domainBonus
		}
	}

	for _, s := range penalizedDomains {
		if strings.Contains(d, s) {
			return socialPenalty
		}
	}

	return 0
}

func lengthAdjustment(chars int) float64 {
	switch {
	case chars > 10000:
		return longBonus
	case chars > 5000:
		return mediumBonus
	case chars < 500:
		return shortPenalty
	default:
		return 0
	}
}

func clamp(score float64) float64 {
	if score < minScore {
		return minScore
	}

	if score > maxScore {
		return maxScore
	}

	return score
}
