package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerNameEnv names the MCP_SERVER_NAME environment variable (spec §6)
// that identifies a running server instance in logs and metrics.
const ServerNameEnv = "MCP_SERVER_NAME"

// Loader loads a Config from a JSON file plus environment overrides.
// Configuration is loaded once per process; re-reads require a restart
// (spec §5 "Configuration is loaded once per process").
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	configFile string
}

// NewLoader creates a Loader for the config file at path. An empty path
// falls back to $MCP_CONFIG_FILE, then ./reporag.config.json.
func NewLoader(path string) Loader {
	return &loader{configFile: path}
}

// Load reads the config file, applies defaults, then environment
// overrides, in the priority order spec §6 describes: QDRANT_CLOUD_URL,
// QDRANT_API_KEY and QDRANT_COLLECTION override the matching nested
// config keys; MCP_PROJECT_ROOT overrides project_root. Unknown top-level
// keys are a CONFIG_ERROR (spec §9's "unknown keys are rejected at load
// time").
func (l *loader) Load() (*Config, error) {
	path := l.configFile
	if path == "" {
		path = os.Getenv("MCP_CONFIG_FILE")
	}
	if path == "" {
		path = "reporag.config.json"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	applyDefaults(v, Default())

	configDir := "."
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config file %s: %w", path, err)
			}
		}
	} else {
		configDir = filepath.Dir(path)
	}

	v.SetEnvPrefix("MCP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Qdrant-style env vars don't match viper's nested-key env derivation
	// (spec §6), so they're bound explicitly.
	bindQdrantEnv(v, "cloud_qdrant", "QDRANT_CLOUD_URL", "QDRANT_API_KEY", "QDRANT_COLLECTION")
	bindQdrantEnv(v, "local_qdrant", "QDRANT_CLOUD_URL", "QDRANT_API_KEY", "QDRANT_COLLECTION")
	_ = v.BindEnv("project_root", "MCP_PROJECT_ROOT")

	cfg := &Config{}
	if err := v.UnmarshalExact(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// viper's nested-default mechanism materializes cloud_qdrant/local_qdrant
	// as non-nil structs (carrying only the timeout/retry_attempts defaults)
	// even when the user never configured either collection; treat "no
	// collection name" as "absent" per spec §6 ("either may be absent").
	if cfg.CloudQdrant != nil && cfg.CloudQdrant.Collection == "" && cfg.CloudQdrant.URL == "" {
		cfg.CloudQdrant = nil
	}
	if cfg.LocalQdrant != nil && cfg.LocalQdrant.Collection == "" && cfg.LocalQdrant.URL == "" {
		cfg.LocalQdrant = nil
	}

	if cfg.ProjectRoot == "" || cfg.ProjectRoot == "." {
		cfg.ProjectRoot = configDir
	} else if !filepath.IsAbs(cfg.ProjectRoot) {
		cfg.ProjectRoot = filepath.Join(configDir, cfg.ProjectRoot)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// bindQdrantEnv binds the three Qdrant-style env vars onto whichever of
// cloud_qdrant/local_qdrant the caller names; both collections share the
// same three override variables per spec §6.
func bindQdrantEnv(v *viper.Viper, section, urlEnv, keyEnv, collEnv string) {
	_ = v.BindEnv(section+".url", urlEnv)
	_ = v.BindEnv(section+".api_key", keyEnv)
	_ = v.BindEnv(section+".collection", collEnv)
}

func applyDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("project_root", d.ProjectRoot)
	v.SetDefault("code_paths", d.CodePaths)
	v.SetDefault("local_docs", d.LocalDocs)
	v.SetDefault("embedding_models.doc", d.EmbeddingModels.Doc)
	v.SetDefault("embedding_models.code", d.EmbeddingModels.Code)
	v.SetDefault("embedding_models.reranking", d.EmbeddingModels.Reranking)
	v.SetDefault("hybrid_retrieval.search_top_k", d.HybridRetrieval.SearchTopK)
	v.SetDefault("hybrid_retrieval.rerank_top_k", d.HybridRetrieval.RerankTopK)
	v.SetDefault("hybrid_retrieval.max_results", d.HybridRetrieval.MaxResults)
	v.SetDefault("hybrid_retrieval.hybrid_weights.bm25", d.HybridRetrieval.HybridWeights.BM25)
	v.SetDefault("hybrid_retrieval.hybrid_weights.vector", d.HybridRetrieval.HybridWeights.Vector)
	v.SetDefault("chunking.doc_chunk_size", d.Chunking.DocChunkSize)
	v.SetDefault("chunking.doc_chunk_overlap", d.Chunking.DocChunkOverlap)
	v.SetDefault("chunking.code_chunk_strategy", d.Chunking.CodeChunkStrategy)
	v.SetDefault("chunking.code_chunk_overlap", d.Chunking.CodeChunkOverlap)
	v.SetDefault("exclude_patterns", d.ExcludePatterns)
	v.SetDefault("cloud_qdrant.timeout", 30*time.Second)
	v.SetDefault("local_qdrant.timeout", 30*time.Second)
	v.SetDefault("cloud_qdrant.retry_attempts", 3)
	v.SetDefault("local_qdrant.retry_attempts", 3)
}
