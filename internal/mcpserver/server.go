package mcpserver

import (
	"context"
	"fmt"
	"os"

	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/open-rag/reporag/internal/classify"
	"github.com/open-rag/reporag/internal/embed"
	"github.com/open-rag/reporag/internal/index"
	"github.com/open-rag/reporag/internal/manifest"
	"github.com/open-rag/reporag/internal/metrics"
	"github.com/open-rag/reporag/internal/rerank"
	"github.com/open-rag/reporag/internal/retrieve"
	"github.com/open-rag/reporag/internal/store"
)

// Collections names the adapters CRUD tools and the retriever operate
// against, keyed "cloud"/"local" to match config §6's naming.
type Collections struct {
	Cloud store.Adapter
	Local store.Adapter
}

// Coordinators names the index.Coordinator instances document-level CRUD
// tools dispatch to, keyed "cloud"/"local" to match Collections.
type Coordinators struct {
	Cloud *index.Coordinator
	Local *index.Coordinator
}

// Config wires every component the tool surface depends on.
type Config struct {
	Collections  Collections
	Embedder     embed.Provider
	Classifier   *classify.Classifier
	Retriever    *retrieve.Retriever
	Reranker     *rerank.Reranker
	Coordinators Coordinators
	Metrics      *metrics.Registry
	Logger       zerolog.Logger
}

// Server wraps the mcp-go stdio server with the C11 tool surface.
type Server struct {
	mcp          *mcpsrv.MCPServer
	embedder     embed.Provider
	classifier   *classify.Classifier
	retriever    *retrieve.Retriever
	reranker     *rerank.Reranker
	coordinators map[string]*index.Coordinator
	stores       map[string]store.Adapter
	defaultName  string
	manifest     *manifest.Manifest
	metrics      *metrics.Registry
	logger       zerolog.Logger
}

// New builds a Server and registers every tool in the surface.
func New(cfg Config) (*Server, error) {
	stores := make(map[string]store.Adapter, 2)
	defaultName := ""
	if cfg.Collections.Cloud != nil {
		stores["cloud"] = cfg.Collections.Cloud
		defaultName = "cloud"
	}
	if cfg.Collections.Local != nil {
		stores["local"] = cfg.Collections.Local
		if defaultName == "" {
			defaultName = "local"
		}
	}
	if len(stores) == 0 {
		return nil, fmt.Errorf("mcpserver: at least one collection must be configured")
	}

	coordinators := make(map[string]*index.Coordinator, 2)
	if cfg.Coordinators.Cloud != nil {
		coordinators["cloud"] = cfg.Coordinators.Cloud
	}
	if cfg.Coordinators.Local != nil {
		coordinators["local"] = cfg.Coordinators.Local
	}

	s := &Server{
		mcp:          mcpsrv.NewMCPServer("reporag", "1.0.0", mcpsrv.WithToolCapabilities(true)),
		embedder:     cfg.Embedder,
		classifier:   cfg.Classifier,
		retriever:    cfg.Retriever,
		reranker:     cfg.Reranker,
		coordinators: coordinators,
		stores:       stores,
		defaultName:  defaultName,
		manifest:     manifest.New(),
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}

	s.registerSearchTools()
	s.registerCRUDTools()
	s.registerManifestTools()
	s.manifest.Validate(s.logger)

	return s, nil
}

// Serve runs the server over stdio until the context is canceled or the
// transport closes.
func (s *Server) Serve(ctx context.Context) error {
	return mcpsrv.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) storeNamed(name string) (store.Adapter, error) {
	if name == "" {
		name = s.defaultName
	}
	adapter, ok := s.stores[name]
	if !ok {
		return nil, fmt.Errorf("mcpserver: unknown collection %q", name)
	}
	return adapter, nil
}

func (s *Server) coordinatorNamed(name string) (*index.Coordinator, error) {
	if name == "" {
		name = s.defaultName
	}
	coord, ok := s.coordinators[name]
	if !ok {
		return nil, fmt.Errorf("mcpserver: unknown collection %q", name)
	}
	return coord, nil
}

func (s *Server) recordToolCall(tool, outcome string) {
	if s.metrics != nil {
		s.metrics.ToolCalls.WithLabelValues(tool, outcome).Inc()
	}
}
