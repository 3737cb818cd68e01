package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/index"
)

var startWatch bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Serve the MCP tool surface over stdio",
	Long: `start runs the search/ask/explain and CRUD tools over MCP's
stdio JSON-RPC transport until the process is interrupted. With
--watch, file changes under project_root trigger incremental
reindexing in the background.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startWatch, "watch", false, "reindex changed files as they're saved")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if startWatch {
		watchers, err := startWatchers(ctx, app)
		if err != nil {
			return err
		}
		defer func() {
			for _, w := range watchers {
				w.Stop()
			}
		}()
	}

	srv, err := app.MCPServer()
	if err != nil {
		return apperr.Wrap(apperr.CodeConfigError, "building MCP server", err)
	}

	if err := srv.Serve(ctx); err != nil {
		return apperr.Wrap(apperr.CodeVectorStoreUnavailable, "serving MCP tools", err)
	}
	return nil
}

func startWatchers(ctx context.Context, app *App) ([]*index.Watcher, error) {
	cfg := app.Config
	watchers := make([]*index.Watcher, 0, len(app.Coordinators))
	for name, coordinator := range app.Coordinators {
		docGlobs := cfg.LocalDocs
		if name == "cloud" {
			docGlobs = cfg.CloudDocs
		}
		disc, err := index.NewDiscovery(cfg.ProjectRoot, docGlobs, cfg.CodePaths, cfg.ExcludePatterns)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeConfigError, "compiling glob patterns for watcher", err)
		}
		w, err := index.NewWatcher(coordinator, disc, cfg.ProjectRoot, app.Logger.With().Str("collection", name).Logger())
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeConfigError, "starting file watcher", err)
		}
		w.Start(ctx)
		watchers = append(watchers, w)
	}
	return watchers, nil
}
