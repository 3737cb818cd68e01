package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
)

// MockProvider is a deterministic Provider for tests and for bypassing
// the embedding model runtime without a live endpoint: it hashes each
// input to a stable vector rather than calling any model.
type MockProvider struct {
	mu         sync.Mutex
	dimensions int
	closed     bool
	embedErr   error
}

// NewMockProvider creates a mock provider producing D-dimensional vectors.
func NewMockProvider(dimensions int) *MockProvider {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockProvider{dimensions: dimensions}
}

// SetEmbedError configures the mock to fail every subsequent Embed call.
func (p *MockProvider) SetEmbedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.embedErr = err
}

// Embed generates a deterministic, L2-normalized vector per input by
// hashing its (normalized) text, so the same content always embeds to
// the same vector without a model call.
func (p *MockProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.embedErr != nil {
		return nil, p.embedErr
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		hash := sha256.Sum256([]byte(Normalize(text)))
		v := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			offset := (j * 4) % len(hash)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			v[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		out[i] = l2Normalize(v)
	}
	return out, nil
}

func (p *MockProvider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dimensions
}

func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// IsClosed reports whether Close has been called, for test assertions.
func (p *MockProvider) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
