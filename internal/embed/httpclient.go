package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// HTTPConfig configures an HTTP-backed Provider.
type HTTPConfig struct {
	Endpoint   string // e.g. "http://127.0.0.1:8121/embed"
	Dimensions int
	Timeout    time.Duration
}

// httpProvider calls out to an embedding HTTP endpoint, grounded on the
// teacher's internal/embed/client.LocalProvider wire format ({texts,
// mode} request, {embeddings} response) but without the subprocess
// lifecycle management the teacher bundles — this spec treats the model
// runtime purely as an external collaborator (spec §1).
type httpProvider struct {
	endpoint   string
	dimensions int
	client     *http.Client
}

// NewHTTPProvider creates a Provider that embeds by POSTing to cfg.Endpoint.
func NewHTTPProvider(cfg HTTPConfig) Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpProvider{
		endpoint:   cfg.Endpoint,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed normalizes every input (spec §4.3) before sending the batch,
// preserving order end to end.
func (p *httpProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	normalized := make([]string, len(texts))
	for i, t := range texts {
		normalized[i] = Normalize(t)
	}

	body, err := json.Marshal(embedRequest{Texts: normalized, Mode: string(mode)})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding embed response: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding server returned %d vectors for %d inputs", len(out.Embeddings), len(texts))
	}

	for i, v := range out.Embeddings {
		out.Embeddings[i] = l2Normalize(v)
	}

	return out.Embeddings, nil
}

func (p *httpProvider) Dimensions() int { return p.dimensions }

func (p *httpProvider) Close() error { return nil }

// l2Normalize scales v to unit length, the normalization spec §3 requires
// of every stored vector ("dense embedding... L2-normalized" per §4.3).
func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(sumSq))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * scale
	}
	return out
}
