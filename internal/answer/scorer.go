// Package answer implements the web answer resolution pipeline: ranked
// search, snippet scoring, page inspection, and generative escalation.
package answer

import "strings"

// Scorer rates a block of text against query words using a weighted
// keyword-overlap heuristic. Words on the important-phrase list count
// double.
type Scorer struct {
	important map[string]bool
}

// NewScorer builds a scorer with the configured important phrases.
func NewScorer(importantPhrases []string) *Scorer {
	important := make(map[string]bool, len(importantPhrases))
	for _, phrase := range importantPhrases {
		important[strings.ToLower(phrase)] = true
	}
	return &Scorer{important: important}
}

// QueryWords lower-cases and whitespace-splits a query into the token set
// used for scoring.
func QueryWords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score sums the weight of every query word contained in text. Containment
// is a case-insensitive substring test, matching how result snippets are
// compared upstream. Important words contribute 2 points, others 1.
func (s *Scorer) Score(text string, queryWords []string) int {
	lower := strings.ToLower(text)

	score := 0
	for _, word := range queryWords {
		if !strings.Contains(lower, word) {
			continue
		}
		if s.important[word] {
			score += 2
		} else {
			score++
		}
	}
	return score
}
