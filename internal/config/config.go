// Package config implements the A1 configuration loader: a single JSON
// object (per spec §6) loaded once per process, with environment
// variable and CLI flag overrides layered on top via viper.
package config

import "time"

// Config is the fixed, enumerated record described in spec §6 and
// spec §9 ("dynamic typing / duck-typed configs... a fixed, enumerated
// record; unknown keys are rejected at load time"). There is no
// catch-all map field.
type Config struct {
	ProjectRoot string `mapstructure:"project_root" json:"project_root"`

	CloudQdrant *QdrantConfig `mapstructure:"cloud_qdrant" json:"cloud_qdrant,omitempty"`
	LocalQdrant *QdrantConfig `mapstructure:"local_qdrant" json:"local_qdrant,omitempty"`

	CloudDocs []string `mapstructure:"cloud_docs" json:"cloud_docs,omitempty"`
	LocalDocs []string `mapstructure:"local_docs" json:"local_docs,omitempty"`
	CodePaths []string `mapstructure:"code_paths" json:"code_paths,omitempty"`

	EmbeddingModels EmbeddingModelsConfig `mapstructure:"embedding_models" json:"embedding_models"`
	HybridRetrieval HybridRetrievalConfig `mapstructure:"hybrid_retrieval" json:"hybrid_retrieval"`
	Chunking        ChunkingConfig        `mapstructure:"chunking" json:"chunking"`

	ExcludePatterns []string `mapstructure:"exclude_patterns" json:"exclude_patterns,omitempty"`
}

// QdrantConfig describes one vector-store collection endpoint. Despite
// the name (kept for wire/env compatibility with QDRANT_* per spec §6)
// it is the generic shape both the "cloud" and "local" collections use;
// the concrete backend is an internal/store.Adapter implementation.
type QdrantConfig struct {
	URL           string        `mapstructure:"url" json:"url,omitempty"`
	APIKey        string        `mapstructure:"api_key" json:"api_key,omitempty"`
	Collection    string        `mapstructure:"collection" json:"collection"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts" json:"retry_attempts"`
}

// EmbeddingModelsConfig names the model used for each content family.
// Doc and code must resolve to the same model in this version (spec §6,
// §9 Open Question 2) to keep a collection's vector dimension uniform.
type EmbeddingModelsConfig struct {
	Doc       string `mapstructure:"doc" json:"doc"`
	Code      string `mapstructure:"code" json:"code"`
	Reranking string `mapstructure:"reranking" json:"reranking"`
}

// HybridWeights are the lexical/vector blend weights for C6's combined
// score s = w_vec*v + w_bm25*b.
type HybridWeights struct {
	BM25   float64 `mapstructure:"bm25" json:"bm25"`
	Vector float64 `mapstructure:"vector" json:"vector"`
}

// HybridRetrievalConfig configures C6 (retriever) and C7 (reranker).
type HybridRetrievalConfig struct {
	SearchTopK    int           `mapstructure:"search_top_k" json:"search_top_k"`
	RerankTopK    int           `mapstructure:"rerank_top_k" json:"rerank_top_k"`
	MaxResults    int           `mapstructure:"max_results" json:"max_results"`
	HybridWeights HybridWeights `mapstructure:"hybrid_weights" json:"hybrid_weights"`
}

// ChunkingConfig configures C1 (doc chunker) and C2 (code chunker).
type ChunkingConfig struct {
	DocChunkSize      int    `mapstructure:"doc_chunk_size" json:"doc_chunk_size"`
	DocChunkOverlap   int    `mapstructure:"doc_chunk_overlap" json:"doc_chunk_overlap"`
	CodeChunkStrategy string `mapstructure:"code_chunk_strategy" json:"code_chunk_strategy"`
	CodeChunkOverlap  int    `mapstructure:"code_chunk_overlap" json:"code_chunk_overlap"`
}

// Default returns a configuration with the defaults named throughout
// spec §4 and §6 (search_top_k=20, rerank_top_k=10, hybrid weights
// 0.7/0.3, doc chunk 1000/100).
func Default() *Config {
	return &Config{
		ProjectRoot: ".",
		CodePaths: []string{
			"**/*.go", "**/*.py", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
			"**/*.c", "**/*.h", "**/*.java", "**/*.php", "**/*.rb", "**/*.rs",
		},
		LocalDocs: []string{"**/*.md"},
		EmbeddingModels: EmbeddingModelsConfig{
			Doc:       "text-embedding-default",
			Code:      "text-embedding-default",
			Reranking: "cross-encoder-default",
		},
		HybridRetrieval: HybridRetrievalConfig{
			SearchTopK: 20,
			RerankTopK: 10,
			MaxResults: 10,
			HybridWeights: HybridWeights{
				BM25:   0.3,
				Vector: 0.7,
			},
		},
		Chunking: ChunkingConfig{
			DocChunkSize:      1000,
			DocChunkOverlap:   100,
			CodeChunkStrategy: "ast",
			CodeChunkOverlap:  0,
		},
		ExcludePatterns: []string{
			"**/node_modules/**", "**/vendor/**", "**/.git/**",
			"**/dist/**", "**/build/**", "**/__pycache__/**",
		},
	}
}
