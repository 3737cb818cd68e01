package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/index"
	"github.com/open-rag/reporag/internal/store"
)

var (
	recoverAll  bool
	recoverFile string
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Clear is_deleted on soft-deleted chunks",
	Long: `recover reverses a previous soft-delete, either across every
collection (--all) or for one file's chunks (--file path), satisfying
spec P5: after recover --file F, no chunk with file_path=F has
is_deleted=true.`,
	RunE: runRecover,
}

func init() {
	recoverCmd.Flags().BoolVar(&recoverAll, "all", false, "recover every soft-deleted chunk")
	recoverCmd.Flags().StringVar(&recoverFile, "file", "", "recover only this file's chunks")
	rootCmd.AddCommand(recoverCmd)
}

func runRecover(cmd *cobra.Command, args []string) error {
	if !recoverAll && recoverFile == "" {
		return apperr.New(apperr.CodeValidation, "recover requires --all or --file")
	}

	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	filter := store.Filter{}
	if recoverFile != "" {
		rel, ok := index.Normalize(app.Config.ProjectRoot, recoverFile)
		if !ok {
			rel = recoverFile
		}
		filter = store.Filter{FilePath: rel, FilePathSet: true}
	}

	ctx := context.Background()
	for name, adapter := range app.Stores {
		result, err := adapter.Recover(ctx, filter)
		if err != nil {
			return apperr.Wrap(apperr.CodeVectorStoreUnavailable, fmt.Sprintf("recovering in %s collection", name), err)
		}
		fmt.Printf("%s: recovered %d chunk(s)\n", name, len(result.SucceededIDs))
	}
	return nil
}
