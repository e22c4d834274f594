package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// RemoveResult represents the result of the remove command.
type RemoveResult struct {
	Bookmark BookmarkInfo `json:"bookmark"`
	Pending  int          `json:"pending_changes"`
}

// NewRemoveCmd creates the remove command.
func NewRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <url-or-id>",
		Short: "Remove a bookmark",
		Long: `Remove a bookmark from the local store.

The bookmark is looked up by URL when the argument parses as an absolute
URL, otherwise by ID. The removal is recorded in the change ledger as a
deletion, so the next sync pass reports it.`,
		Aliases: []string{"rm", "delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0])
		},
	}

	return cmd
}

func runRemove(ref string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := context.Background()
	b, err := container.BookmarkService().Remove(ctx, ref)
	if err != nil {
		return err
	}

	pending, err := container.Ledger().ChangeCount(ctx)
	if err != nil {
		return fmt.Errorf("bookmark removed but pending count unavailable: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(RemoveResult{Bookmark: newBookmarkInfo(b), Pending: pending})
	}

	formatter.Success("Bookmark removed")
	formatter.Item("URL", b.URL)
	formatter.Item("Title", b.Title)
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("%d change(s) pending sync", pending)))

	return nil
}
