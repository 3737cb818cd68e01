package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPConfig configures an HTTP-backed cross-encoder Scorer, grounded on
// the same wire-shape convention as internal/embed's httpProvider
// (POST a JSON batch, receive a JSON batch back, one external model
// process per concern).
type HTTPConfig struct {
	Endpoint string // e.g. "http://127.0.0.1:8122/rerank"
	Timeout  time.Duration
}

type httpScorer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPScorer creates a Scorer that scores by POSTing to cfg.Endpoint.
func NewHTTPScorer(cfg HTTPConfig) Scorer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpScorer{endpoint: cfg.Endpoint, client: &http.Client{Timeout: timeout}}
}

type scoreRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

func (s *httpScorer) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(scoreRequest{Query: query, Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling rerank endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank endpoint returned status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding rerank response: %w", err)
	}
	if len(out.Scores) != len(texts) {
		return nil, fmt.Errorf("rerank endpoint returned %d scores for %d texts", len(out.Scores), len(texts))
	}
	return out.Scores, nil
}
