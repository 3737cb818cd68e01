package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Discard the local embedding cache",
	Long: `clean removes the on-disk embedding cache. The cache only holds
a derived (content hash, model) -> vector mapping and is rebuilt lazily
as embeddings are recomputed, so deleting it is always safe.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return apperr.Wrap(apperr.CodeConfigError, "loading config", err)
	}

	cachePath := filepath.Join(cfg.ProjectRoot, ".reporag", "embed-cache.db")
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		fmt.Println("no embedding cache to clean")
		return nil
	}
	if err := os.Remove(cachePath); err != nil {
		return apperr.Wrap(apperr.CodeConfigError, "removing embedding cache", err)
	}
	fmt.Printf("removed embedding cache at %s\n", cachePath)
	return nil
}
