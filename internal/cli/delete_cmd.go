package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/store"
)

var (
	deletePreview bool
	deleteConfirm bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Physically purge every soft-deleted chunk",
	Long: `delete permanently removes every chunk with is_deleted=true.
--preview (the default) only reports what would be purged; --confirm
performs the irreversible DeleteByIDs call.`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deletePreview, "preview", false, "report what would be purged without deleting (default)")
	deleteCmd.Flags().BoolVar(&deleteConfirm, "confirm", false, "actually purge soft-deleted chunks")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	filter := store.Filter{IsDeleted: true, IsDeletedSet: true}
	ctx := context.Background()

	for name, adapter := range app.Stores {
		var ids []uint64
		cursor := ""
		for {
			page, err := adapter.Scroll(ctx, filter, cursor, 1000)
			if err != nil {
				return apperr.Wrap(apperr.CodeVectorStoreUnavailable, fmt.Sprintf("scrolling %s collection", name), err)
			}
			for _, c := range page.Chunks {
				ids = append(ids, c.ID)
			}
			if page.Cursor == "" {
				break
			}
			cursor = page.Cursor
		}

		if !deleteConfirm {
			fmt.Printf("%s: %d soft-deleted chunk(s) would be purged (pass --confirm to purge)\n", name, len(ids))
			continue
		}

		if len(ids) == 0 {
			fmt.Printf("%s: nothing to purge\n", name)
			continue
		}
		result, err := adapter.DeleteByIDs(ctx, ids)
		if err != nil {
			return apperr.Wrap(apperr.CodeVectorStoreUnavailable, fmt.Sprintf("purging %s collection", name), err)
		}
		fmt.Printf("%s: purged %d chunk(s)\n", name, len(result.SucceededIDs))
	}
	return nil
}
