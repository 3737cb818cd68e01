// Package metrics implements SPEC_FULL.md §4.14: an in-process
// Prometheus registry tracking tool timing, indexing throughput, and
// embedding cache effectiveness. There is no HTTP /metrics endpoint —
// exposing one is a transport concern spec.md §1 scopes out — the
// registry is read directly by `stats` and by tests.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry groups every counter/histogram the system emits.
type Registry struct {
	reg *prometheus.Registry

	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec

	FilesIndexed   prometheus.Counter
	ChunksUpserted prometheus.Counter
	ChunksDeleted  prometheus.Counter
	ParseFailures  prometheus.Counter

	EmbedCacheHits   prometheus.Counter
	EmbedCacheMisses prometheus.Counter

	VectorStoreRetries prometheus.Counter
}

// New builds and registers a fresh Registry. A fresh *prometheus.Registry
// (not the global DefaultRegisterer) is used so tests can construct
// independent instances without collector-already-registered panics.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reporag_tool_calls_total",
			Help: "Number of tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reporag_tool_duration_seconds",
			Help:    "Tool invocation latency by tool name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		FilesIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_indexer_files_processed_total",
			Help: "Files processed by the indexer coordinator.",
		}),
		ChunksUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_indexer_chunks_upserted_total",
			Help: "Chunks inserted or updated by the indexer coordinator.",
		}),
		ChunksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_indexer_chunks_soft_deleted_total",
			Help: "Chunks soft-deleted by the indexer coordinator.",
		}),
		ParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_indexer_parse_failures_total",
			Help: "Files skipped due to PARSE_FAILED.",
		}),
		EmbedCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_embed_cache_hits_total",
			Help: "Embedding cache hits by content hash.",
		}),
		EmbedCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_embed_cache_misses_total",
			Help: "Embedding cache misses by content hash.",
		}),
		VectorStoreRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reporag_vector_store_retries_total",
			Help: "Retries issued against the vector store after VECTOR_STORE_UNAVAILABLE.",
		}),
	}

	reg.MustRegister(
		r.ToolCalls, r.ToolDuration,
		r.FilesIndexed, r.ChunksUpserted, r.ChunksDeleted, r.ParseFailures,
		r.EmbedCacheHits, r.EmbedCacheMisses, r.VectorStoreRetries,
	)

	return r
}

// Gather exposes the underlying registry's Gather for tests and the
// `stats` CLI subcommand.
func (r *Registry) Gather() ([]*prometheus.MetricFamily, error) {
	return r.reg.Gather()
}
