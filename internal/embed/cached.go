package embed

import (
	"context"
	"fmt"

	"github.com/maypok86/otter"

	"github.com/open-rag/reporag/internal/metrics"
)

// l1Weight bounds the in-memory L1 vector cache by approximate byte size
// rather than entry count, the same weight-based shape the teacher's
// internal/graph/searcher.go uses for its file cache.
const l1Weight = 20 * 1024 * 1024 // 20MB of float32 vectors

// CachedProvider wraps a Provider with a two-tier embedding cache
// (SPEC_FULL.md §4.12): an in-memory otter.Cache L1 in front of the
// SQLite-backed L2 (Cache), both keyed by content hash so the indexer
// coordinator never re-embeds an unchanged chunk. contentHashes must
// align 1:1 with texts; callers (the indexer) already compute
// ContentHash per chunk.
type CachedProvider struct {
	inner   Provider
	cache   *Cache
	l1      otter.Cache[string, []float32]
	model   string
	metrics *metrics.Registry
}

// NewCachedProvider wraps inner with cache, tagging entries with model so
// a model-change re-index (invariant I2) never serves a stale vector.
func NewCachedProvider(inner Provider, cache *Cache, model string, reg *metrics.Registry) *CachedProvider {
	l1, err := otter.MustBuilder[string, []float32](l1Weight).
		Cost(func(_ string, v []float32) uint32 { return uint32(len(v) * 4) }).
		Build()
	if err != nil {
		// otter.MustBuilder only errors on a misconfigured builder (e.g. a
		// non-positive capacity), never at runtime; l1Weight is a fixed
		// positive constant, so this can only fire if that constant is
		// ever broken.
		panic(fmt.Sprintf("embed: building L1 cache: %v", err))
	}
	return &CachedProvider{inner: inner, cache: cache, l1: l1, model: model, metrics: reg}
}

func (p *CachedProvider) l1Key(contentHash string) string {
	return p.model + "|" + contentHash
}

// EmbedWithHashes embeds texts, serving any (contentHash, model) pair
// already cached (L1 in memory, then L2 on disk) and only calling the
// underlying provider for misses in both. Results are returned in the
// original order.
func (p *CachedProvider) EmbedWithHashes(ctx context.Context, texts []string, contentHashes []string, mode Mode) ([][]float32, error) {
	if len(texts) != len(contentHashes) {
		return nil, fmt.Errorf("embed: %d texts but %d content hashes", len(texts), len(contentHashes))
	}

	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, hash := range contentHashes {
		if v, ok := p.l1.Get(p.l1Key(hash)); ok {
			out[i] = v
			if p.metrics != nil {
				p.metrics.EmbedCacheHits.Inc()
			}
			continue
		}

		v, ok, err := p.cache.Get(ctx, hash, p.model)
		if err != nil {
			return nil, err
		}
		if ok {
			out[i] = v
			p.l1.Set(p.l1Key(hash), v)
			if p.metrics != nil {
				p.metrics.EmbedCacheHits.Inc()
			}
			continue
		}
		if p.metrics != nil {
			p.metrics.EmbedCacheMisses.Inc()
		}
		missTexts = append(missTexts, texts[i])
		missIdx = append(missIdx, i)
	}

	if len(missTexts) > 0 {
		vectors, err := p.inner.Embed(ctx, missTexts, mode)
		if err != nil {
			return nil, err
		}
		for j, idx := range missIdx {
			out[idx] = vectors[j]
			if err := p.cache.Put(ctx, contentHashes[idx], p.model, vectors[j]); err != nil {
				return nil, err
			}
			p.l1.Set(p.l1Key(contentHashes[idx]), vectors[j])
		}
	}

	return out, nil
}

// Embed satisfies Provider without cache participation (no content hash
// is available for a raw query string); used for query-time embedding.
func (p *CachedProvider) Embed(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	return p.inner.Embed(ctx, texts, mode)
}

func (p *CachedProvider) Dimensions() int { return p.inner.Dimensions() }

func (p *CachedProvider) Close() error {
	p.l1.Close()
	if err := p.cache.Close(); err != nil {
		return err
	}
	return p.inner.Close()
}
