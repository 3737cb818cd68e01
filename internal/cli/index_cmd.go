package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/index"
)

var (
	indexDocsOnly bool
	indexCodeOnly bool
	indexCloud    bool
	indexLocal    bool
	indexCleanup  bool
	indexDryRun   bool
	indexPrune    bool
	indexQuiet    bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Chunk, embed, and incrementally upsert every matching file",
	Long: `index discovers files under project_root matching the configured
doc and code globs, runs the five-step incremental upsert algorithm per
file, and optionally sweeps for orphaned files no longer on disk.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexDocsOnly, "docs", false, "index only Markdown documents")
	indexCmd.Flags().BoolVar(&indexCodeOnly, "code", false, "index only source code")
	indexCmd.Flags().BoolVar(&indexCloud, "cloud", false, "index only the cloud collection")
	indexCmd.Flags().BoolVar(&indexLocal, "local", false, "index only the local collection")
	indexCmd.Flags().BoolVar(&indexCleanup, "cleanup", false, "also run an orphan sweep after indexing")
	indexCmd.Flags().BoolVar(&indexDryRun, "dry-run", false, "report orphans without soft-deleting (default)")
	indexCmd.Flags().BoolVar(&indexPrune, "prune", false, "soft-delete orphans found by --cleanup")
	indexCmd.Flags().BoolVarP(&indexQuiet, "quiet", "q", false, "suppress progress output")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	targets := targetCollections(app, indexCloud, indexLocal)
	if len(targets) == 0 {
		return apperr.New(apperr.CodeConfigError, "no collections configured to index")
	}

	ctx := context.Background()
	exitCode := 0

	for _, name := range targets {
		coordinator := app.Coordinators[name]
		cfg := app.Config

		var files []index.File
		if !indexCodeOnly {
			docGlobs := cfg.LocalDocs
			if name == "cloud" {
				docGlobs = cfg.CloudDocs
			}
			disc, err := index.NewDiscovery(cfg.ProjectRoot, docGlobs, nil, cfg.ExcludePatterns)
			if err != nil {
				return apperr.Wrap(apperr.CodeConfigError, "compiling doc glob patterns", err)
			}
			found, err := disc.Discover()
			if err != nil {
				return fmt.Errorf("discovering docs: %w", err)
			}
			files = append(files, found...)
		}
		if !indexDocsOnly {
			disc, err := index.NewDiscovery(cfg.ProjectRoot, nil, cfg.CodePaths, cfg.ExcludePatterns)
			if err != nil {
				return apperr.Wrap(apperr.CodeConfigError, "compiling code glob patterns", err)
			}
			found, err := disc.Discover()
			if err != nil {
				return fmt.Errorf("discovering code: %w", err)
			}
			files = append(files, found...)
		}

		progress := NewProgressReporter(indexQuiet)
		progress.OnDiscoveryComplete(len(files))
		reports, err := coordinator.IndexAllWithProgress(ctx, files, 8, progress.OnFile)
		if err != nil {
			return apperr.Wrap(apperr.CodeVectorStoreUnavailable, fmt.Sprintf("indexing %s collection", name), err)
		}
		progress.OnComplete(reports)

		for _, r := range reports {
			if r.Skipped {
				exitCode = 4
				app.Logger.Warn().Str("file", r.Path).Str("reason", r.SkipReason).Msg("file skipped")
			}
		}

		if indexCleanup {
			live := make([]string, 0, len(files))
			for _, f := range files {
				if rel, ok := index.Normalize(cfg.ProjectRoot, f.AbsPath); ok {
					live = append(live, rel)
				}
			}
			report, err := coordinator.OrphanSweep(ctx, live, indexPrune)
			if err != nil {
				return apperr.Wrap(apperr.CodeVectorStoreUnavailable, fmt.Sprintf("sweeping %s collection", name), err)
			}
			if !indexQuiet {
				fmt.Printf("Orphan sweep (%s): %d file(s), %d chunk(s) orphaned, pruned=%v\n",
					name, len(report.OrphanedFiles), report.TotalOrphaned, report.Pruned)
				for _, path := range report.SortedPaths() {
					fmt.Printf("  %s (%d chunks)\n", path, report.OrphanedFiles[path])
				}
			}
		}
	}

	if exitCode != 0 {
		cmd.SilenceUsage = true
		return exitErr{code: exitCode, msg: "indexing completed with skipped files"}
	}
	return nil
}

// targetCollections resolves --cloud/--local to the configured
// collection names to act on; neither flag set means every configured
// collection.
func targetCollections(app *App, cloud, local bool) []string {
	if !cloud && !local {
		names := make([]string, 0, len(app.Coordinators))
		if _, ok := app.Coordinators["cloud"]; ok {
			names = append(names, "cloud")
		}
		if _, ok := app.Coordinators["local"]; ok {
			names = append(names, "local")
		}
		return names
	}
	var names []string
	if cloud {
		if _, ok := app.Coordinators["cloud"]; ok {
			names = append(names, "cloud")
		}
	}
	if local {
		if _, ok := app.Coordinators["local"]; ok {
			names = append(names, "local")
		}
	}
	return names
}
