package config

import (
	"errors"
	"fmt"

	"github.com/open-rag/reporag/internal/apperr"
)

var (
	// ErrNoCollection indicates neither cloud_qdrant nor local_qdrant was configured.
	ErrNoCollection = errors.New("at least one of cloud_qdrant or local_qdrant must be configured")
	// ErrModelMismatch indicates embedding_models.doc and .code name different models.
	ErrModelMismatch = errors.New("embedding_models.doc and embedding_models.code must name the same model")
	// ErrInvalidWeights indicates a negative or all-zero hybrid weight pair.
	ErrInvalidWeights = errors.New("hybrid_weights must be non-negative and not both zero")
)

// Validate checks cfg for the invariants spec §6 and §9 require, raising
// CONFIG_ERROR (spec §7: "raised at startup; process exits") on the first
// violation. Unknown keys are rejected earlier, at viper unmarshal time
// (mapstructure.ErrorUnused), not here.
func Validate(cfg *Config) error {
	if cfg.CloudQdrant == nil && cfg.LocalQdrant == nil {
		return apperr.Wrap(apperr.CodeConfigError, "no vector store collection configured", ErrNoCollection)
	}

	// Open Question 2: a single embedding dimension per collection is
	// enforced here (doc/code must name the same model) and again at
	// ensure_collection time against the collection's stored dimension.
	if cfg.EmbeddingModels.Doc != "" && cfg.EmbeddingModels.Code != "" &&
		cfg.EmbeddingModels.Doc != cfg.EmbeddingModels.Code {
		return apperr.Wrap(apperr.CodeConfigError, "embedding model mismatch", ErrModelMismatch)
	}

	w := cfg.HybridRetrieval.HybridWeights
	if w.BM25 < 0 || w.Vector < 0 || (w.BM25 == 0 && w.Vector == 0) {
		return apperr.Wrap(apperr.CodeConfigError, "invalid hybrid weights", ErrInvalidWeights)
	}

	if cfg.Chunking.DocChunkSize <= 0 {
		return apperr.New(apperr.CodeConfigError, fmt.Sprintf("chunking.doc_chunk_size must be positive, got %d", cfg.Chunking.DocChunkSize))
	}
	if cfg.Chunking.DocChunkOverlap < 0 || cfg.Chunking.DocChunkOverlap >= cfg.Chunking.DocChunkSize {
		return apperr.New(apperr.CodeConfigError, fmt.Sprintf("chunking.doc_chunk_overlap (%d) must be in [0, doc_chunk_size)", cfg.Chunking.DocChunkOverlap))
	}

	for _, qc := range []*QdrantConfig{cfg.CloudQdrant, cfg.LocalQdrant} {
		if qc == nil {
			continue
		}
		if qc.Collection == "" {
			return apperr.New(apperr.CodeConfigError, "qdrant collection name is required")
		}
		if qc.RetryAttempts < 0 {
			return apperr.New(apperr.CodeConfigError, "retry_attempts cannot be negative")
		}
	}

	return nil
}
