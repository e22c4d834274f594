package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// BookmarkInfo represents a bookmark for display.
type BookmarkInfo struct {
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// newBookmarkInfo converts a domain bookmark to its display form.
func newBookmarkInfo(b *bookmark.Bookmark) BookmarkInfo {
	return BookmarkInfo{
		ID:        b.ID,
		URL:       b.URL,
		Title:     b.Title,
		Tags:      b.Tags,
		Excerpt:   b.Excerpt,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

// BookmarkListOutput represents the output for the list command.
type BookmarkListOutput struct {
	Bookmarks []BookmarkInfo `json:"bookmarks"`
	Count     int            `json:"count"`
}

// NewListCmd creates the list command for displaying bookmarks.
func NewListCmd() *cobra.Command {
	var (
		format string
		tag    string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List bookmarks",
		Long: `Display bookmarks from the local store, most recently updated first.

An optional free-text query matches against URL, title, excerpt, and
tags. Results can additionally be narrowed to a single tag.`,
		Aliases: []string{"ls", "search"},
		Args:    cobra.MaximumNArgs(1),
		Example: `  # List everything
  mk list

  # Search across URL, title, excerpt, and tags
  mk list golang

  # Only bookmarks tagged "reference", at most five
  mk list --tag reference --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runList(format, tag, query, limit)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, table (default: uses global --output flag)")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only bookmarks carrying this tag")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 for all)")

	return cmd
}

func runList(formatFlag, tag, query string, limit int) error {
	// Determine output format
	// Priority: --format flag > global --output flag > default (text)
	format := output.FormatText
	if formatFlag != "" {
		parsedFormat, err := output.ParseFormat(formatFlag)
		if err != nil {
			return fmt.Errorf("invalid format: %s (valid options: text, json, table)", formatFlag)
		}
		format = parsedFormat
	} else if globalFlags.Output == "json" {
		format = output.FormatJSON
	} else if globalFlags.Output == "table" {
		format = output.FormatTable
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON && output.IsColorSupported()),
	)

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	bms, err := container.BookmarkService().List(context.Background(), &bookmark.Filter{
		Tag:   tag,
		Query: query,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	infos := make([]BookmarkInfo, 0, len(bms))
	for _, b := range bms {
		infos = append(infos, newBookmarkInfo(b))
	}

	listOutput := BookmarkListOutput{
		Bookmarks: infos,
		Count:     len(infos),
	}

	switch format {
	case output.FormatJSON:
		return formatter.JSON(listOutput)
	case output.FormatTable, output.FormatText:
		return renderBookmarksTable(formatter, infos)
	default:
		return renderBookmarksTable(formatter, infos)
	}
}

// renderBookmarksTable renders bookmarks as a formatted table.
func renderBookmarksTable(formatter *output.Formatter, bms []BookmarkInfo) error {
	if len(bms) == 0 {
		formatter.Info("No bookmarks found")
		formatter.Println("")
		formatter.Println("Run 'mk add <url>' to save your first bookmark.")
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "TITLE", Width: 30, Align: output.AlignLeft},
			{Header: "URL", Width: 40, Align: output.AlignLeft},
			{Header: "TAGS", Width: 20, Align: output.AlignLeft},
			{Header: "UPDATED", Width: 16, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(bms)),
	}

	for _, b := range bms {
		updated := b.UpdatedAt
		if t, err := time.Parse(time.RFC3339, b.UpdatedAt); err == nil {
			updated = t.Local().Format("2006-01-02 15:04")
		}

		row := []string{
			truncateString(b.Title, 30),
			truncateString(b.URL, 40),
			truncateString(strings.Join(b.Tags, ", "), 20),
			updated,
		}
		tableData.Rows = append(tableData.Rows, row)
	}

	// Print header
	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Bookmarks"))
	formatter.Println("")

	// Render table
	if err := formatter.Table(tableData); err != nil {
		return err
	}

	// Print summary
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d bookmark(s)", len(bms))))

	return nil
}

// truncateString truncates a string to the specified length with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
