package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// AddResult represents the result of the add command.
type AddResult struct {
	Bookmark BookmarkInfo `json:"bookmark"`
	Pending  int          `json:"pending_changes"`
}

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	var (
		title   string
		tags    []string
		excerpt string
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Long: `Add a bookmark to the local store.

The addition is recorded in the change ledger, so the next sync pass
picks it up. When no title is given, the URL doubles as the title.`,
		Example: `  # Add a bookmark
  mk add https://go.dev --title "The Go Programming Language"

  # Add with tags and an excerpt
  mk add https://pkg.go.dev -t "Go Packages" --tag go --tag reference -e "Package index"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args[0], title, tags, excerpt)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title (defaults to the URL)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")
	cmd.Flags().StringVarP(&excerpt, "excerpt", "e", "", "short excerpt or note")

	return cmd
}

func runAdd(rawURL, title string, tags []string, excerpt string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	if title == "" {
		title = rawURL
	}

	ctx := context.Background()
	b, err := container.BookmarkService().Add(ctx, rawURL, title, tags, excerpt)
	if err != nil {
		return err
	}

	pending, err := container.Ledger().ChangeCount(ctx)
	if err != nil {
		return fmt.Errorf("bookmark added but pending count unavailable: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(AddResult{Bookmark: newBookmarkInfo(b), Pending: pending})
	}

	formatter.Success("Bookmark added")
	formatter.Item("URL", b.URL)
	formatter.Item("Title", b.Title)
	if len(b.Tags) > 0 {
		formatter.Item("Tags", strings.Join(b.Tags, ", "))
	}
	if b.Excerpt != "" {
		formatter.Item("Excerpt", b.Excerpt)
	}
	formatter.Item("ID", b.ID)
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("%d change(s) pending sync", pending)))

	return nil
}
