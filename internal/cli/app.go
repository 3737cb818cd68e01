// Package cli implements the A2 Cobra command tree: index, stats,
// recover, delete, clean, start, and setup, grounded on the teacher's
// internal/cli package (root.go's cobra base command, version.go,
// progress.go), wired to the rest of the system through App.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/chunk"
	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/config"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/index"
	"github.com/open-rag/reporag/internal/logging"
	"github.com/open-rag/reporag/internal/mcpserver"
	"github.com/open-rag/reporag/internal/metrics"
	"github.com/open-rag/reporag/internal/rerank"
	"github.com/open-rag/reporag/internal/retrieve"
	"github.com/open-rag/reporag/internal/store"
	"github.com/open-rag/reporag/internal/store/chromemstore"
)

// App bundles every component a CLI subcommand needs, built fresh per
// invocation rather than from a package-level global (spec.md §9).
type App struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Metrics     *metrics.Registry
	Embedder    embed.Provider
	cache       *embed.Cache
	Stores      map[string]store.Adapter
	Coordinators map[string]*index.Coordinator
	Classifier  *classify.Classifier
	Retriever   *retrieve.Retriever
	Reranker    *rerank.Reranker
}

// buildApp loads config and wires every component. Collection names are
// "cloud"/"local" per config §6.
func buildApp() (*App, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeConfigError, "loading config", err)
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := logging.New(level, os.Stderr)
	reg := metrics.New()

	dims := envInt("EMBEDDING_DIMENSIONS", 384)
	endpoint := envString("EMBEDDING_ENDPOINT", "http://127.0.0.1:8121/embed")
	inner := embed.NewHTTPProvider(embed.HTTPConfig{Endpoint: endpoint, Dimensions: dims, Timeout: 30 * time.Second})

	cachePath := filepath.Join(cfg.ProjectRoot, ".reporag", "embed-cache.db")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		return nil, apperr.Wrap(apperr.CodeConfigError, "creating embedding cache directory", err)
	}
	cache, err := embed.OpenCache(cachePath)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeConfigError, "opening embedding cache", err)
	}
	embedder := embed.NewCachedProvider(inner, cache, cfg.EmbeddingModels.Doc, reg)

	stores := make(map[string]store.Adapter)
	coordinators := make(map[string]*index.Coordinator)
	collections := make([]retrieve.Collection, 0, 2)

	addCollection := func(name string, qc *config.QdrantConfig) error {
		if qc == nil {
			return nil
		}
		st := chromemstore.New(logger.With().Str("collection", name).Logger())
		if err := st.EnsureCollection(context.Background(), qc.Collection, dims); err != nil {
			return apperr.Wrap(apperr.CodeVectorStoreUnavailable, fmt.Sprintf("ensuring %s collection", name), err)
		}
		stores[name] = st
		collections = append(collections, retrieve.Collection{Name: name, Adapter: st})
		coordinators[name] = &index.Coordinator{
			Store:       st,
			Embedder:    embedder,
			DocConfig:   docChunkConfig(cfg),
			ProjectRoot: cfg.ProjectRoot,
			Logger:      logger,
			Metrics:     reg,
		}
		return nil
	}

	if err := addCollection("cloud", cfg.CloudQdrant); err != nil {
		return nil, err
	}
	if err := addCollection("local", cfg.LocalQdrant); err != nil {
		return nil, err
	}
	if len(stores) == 0 {
		// config.Validate already rejects a config with neither
		// collection, so this fallback to a single local in-memory
		// collection is only a guard; it is not reached after a
		// successful Load.
		if err := addCollection("local", &config.QdrantConfig{Collection: "reporag"}); err != nil {
			return nil, err
		}
	}

	classifier := classify.New()
	retriever := retrieve.New(collections, embedder, cfg.HybridRetrieval.HybridWeights, cfg.HybridRetrieval.SearchTopK)

	var scorer rerank.Scorer = rerank.MockScorer{}
	bypass := true
	if rerankEndpoint := envString("RERANK_ENDPOINT", ""); rerankEndpoint != "" {
		scorer = rerank.NewHTTPScorer(rerank.HTTPConfig{Endpoint: rerankEndpoint, Timeout: 30 * time.Second})
		bypass = false
	}
	reranker := rerank.New(scorer, cfg.HybridRetrieval.RerankTopK, bypass)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Metrics:      reg,
		Embedder:     embedder,
		cache:        cache,
		Stores:       stores,
		Coordinators: coordinators,
		Classifier:   classifier,
		Retriever:    retriever,
		Reranker:     reranker,
	}, nil
}

// Close releases the embedding cache and every store.
func (a *App) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	for _, st := range a.Stores {
		_ = st.Close()
	}
}

// MCPServer builds the C11 tool surface over this App's components.
func (a *App) MCPServer() (*mcpserver.Server, error) {
	return mcpserver.New(mcpserver.Config{
		Collections:  mcpserver.Collections{Cloud: a.Stores["cloud"], Local: a.Stores["local"]},
		Embedder:     a.Embedder,
		Classifier:   a.Classifier,
		Retriever:    a.Retriever,
		Reranker:     a.Reranker,
		Coordinators: mcpserver.Coordinators{Cloud: a.Coordinators["cloud"], Local: a.Coordinators["local"]},
		Metrics:      a.Metrics,
		Logger:       a.Logger,
	})
}

func docChunkConfig(cfg *config.Config) chunk.DocChunkConfig {
	d := chunk.DefaultDocChunkConfig()
	d.TargetSize = cfg.Chunking.DocChunkSize
	d.Overlap = cfg.Chunking.DocChunkOverlap
	return d
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// exitErr lets a subcommand report spec §6's partial-failure exit code
// (4) without that meaning being folded into the apperr taxonomy, which
// only speaks to a single operation's own success/failure.
type exitErr struct {
	code int
	msg  string
}

func (e exitErr) Error() string { return e.msg }

// exitCodeFor maps an apperr code to the process exit code spec §6 names.
func exitCodeFor(err error) int {
	var ee exitErr
	if asExitErr(err, &ee) {
		return ee.code
	}
	switch apperr.CodeOf(err) {
	case "":
		return 1
	case apperr.CodeConfigError:
		return 2
	case apperr.CodeVectorStoreUnavailable:
		return 3
	default:
		return 1
	}
}

func asExitErr(err error, target *exitErr) bool {
	if ee, ok := err.(exitErr); ok {
		*target = ee
		return true
	}
	return false
}
