package rerank

import (
	"context"
	"strings"
)

// MockScorer is a deterministic Scorer for tests: it scores each text by
// the count of query terms it contains, so results are stable without a
// live cross-encoder endpoint.
type MockScorer struct{}

func (MockScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	terms := strings.Fields(strings.ToLower(query))
	scores := make([]float64, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		var hits float64
		for _, term := range terms {
			if strings.Contains(lower, term) {
				hits++
			}
		}
		scores[i] = hits
	}
	return scores, nil
}
