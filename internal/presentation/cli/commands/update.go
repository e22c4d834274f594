package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/application/bookmarks"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// UpdateResult represents the result of the update command.
type UpdateResult struct {
	Bookmark BookmarkInfo `json:"bookmark"`
	Pending  int          `json:"pending_changes"`
}

// NewUpdateCmd creates the update command.
func NewUpdateCmd() *cobra.Command {
	var (
		title     string
		excerpt   string
		tags      []string
		clearTags bool
	)

	cmd := &cobra.Command{
		Use:   "update <url-or-id>",
		Short: "Update a bookmark",
		Long: `Update the title, excerpt, or tags of an existing bookmark.

The bookmark is looked up by URL when the argument parses as an absolute
URL, otherwise by ID. Only fields whose flags are set change; --tag
replaces the whole tag set. The update is recorded in the change ledger.`,
		Example: `  # Retitle a bookmark
  mk update https://go.dev --title "Go"

  # Replace its tags
  mk update https://go.dev --tag go --tag language

  # Drop all tags
  mk update https://go.dev --clear-tags`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := bookmarks.UpdateOptions{}
			if cmd.Flags().Changed("title") {
				opts.Title = &title
			}
			if cmd.Flags().Changed("excerpt") {
				opts.Excerpt = &excerpt
			}
			if clearTags {
				opts.Tags = []string{}
			} else if cmd.Flags().Changed("tag") {
				opts.Tags = tags
			}
			return runUpdate(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&excerpt, "excerpt", "e", "", "new excerpt")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replacement tag (repeatable)")
	cmd.Flags().BoolVar(&clearTags, "clear-tags", false, "remove all tags")

	return cmd
}

func runUpdate(ref string, opts bookmarks.UpdateOptions) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	if opts.Title == nil && opts.Excerpt == nil && opts.Tags == nil {
		return fmt.Errorf("nothing to update: set --title, --excerpt, --tag, or --clear-tags")
	}

	ctx := context.Background()
	b, err := container.BookmarkService().Update(ctx, ref, opts)
	if err != nil {
		return err
	}

	pending, err := container.Ledger().ChangeCount(ctx)
	if err != nil {
		return fmt.Errorf("bookmark updated but pending count unavailable: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(UpdateResult{Bookmark: newBookmarkInfo(b), Pending: pending})
	}

	formatter.Success("Bookmark updated")
	formatter.Item("URL", b.URL)
	formatter.Item("Title", b.Title)
	if len(b.Tags) > 0 {
		formatter.Item("Tags", strings.Join(b.Tags, ", "))
	}
	if b.Excerpt != "" {
		formatter.Item("Excerpt", b.Excerpt)
	}
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("%d change(s) pending sync", pending)))

	return nil
}
