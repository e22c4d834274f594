package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// ChangeInfo represents one pending change for display.
type ChangeInfo struct {
	URL        string `json:"url"`
	Type       string `json:"type"`
	RecordedAt string `json:"recorded_at"`
}

// ChangesOutput represents the output of the changes command.
type ChangesOutput struct {
	Changes  []ChangeInfo `json:"changes"`
	Count    int          `json:"count"`
	Buffered int          `json:"buffered"`
}

// DiscardResult holds the result of the changes discard command.
type DiscardResult struct {
	Discarded int `json:"discarded"`
}

// NewChangesCmd creates the changes command.
func NewChangesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show changes waiting for the next sync pass",
		Long: `List the local changes recorded since the last successful sync pass.

Each entry is the latest state of one bookmark URL; repeated edits to the
same bookmark collapse into a single change. Changes recorded while a pass
is running are buffered separately and folded in when the pass ends.

Examples:
  # Show pending changes
  mk changes

  # Show pending changes as JSON
  mk changes -o json

  # Drop all pending changes without syncing them
  mk changes discard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanges()
		},
	}

	cmd.AddCommand(NewChangesDiscardCmd())

	return cmd
}

func runChanges() error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := context.Background()

	pending, err := container.Ledger().PendingChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending changes: %w", err)
	}
	buffered := container.Ledger().OverflowCount()

	changes := make([]ChangeInfo, 0, pending.Len())
	for _, change := range pending.Values() {
		changeType := "update"
		if change.Payload.Deleted {
			changeType = "delete"
		}
		changes = append(changes, ChangeInfo{
			URL:        change.Key,
			Type:       changeType,
			RecordedAt: change.RecordedAt.Format(time.RFC3339),
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(ChangesOutput{
			Changes:  changes,
			Count:    len(changes),
			Buffered: buffered,
		})
	}

	if len(changes) == 0 && buffered == 0 {
		formatter.Info("No changes pending")
		formatter.Println("%s", formatter.Dim("Everything recorded locally has been synced."))
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "URL", Width: 48, Align: output.AlignLeft},
			{Header: "TYPE", Width: 8, Align: output.AlignLeft},
			{Header: "RECORDED", Width: 16, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(changes)),
	}

	for _, change := range changes {
		recorded := change.RecordedAt
		if t, err := time.Parse(time.RFC3339, change.RecordedAt); err == nil {
			recorded = t.Local().Format("2006-01-02 15:04")
		}

		tableData.Rows = append(tableData.Rows, []string{
			truncateString(change.URL, 48),
			change.Type,
			recorded,
		})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Pending Changes"))
	formatter.Println("")

	if err := formatter.Table(tableData); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	formatter.Println("")
	summary := fmt.Sprintf("Total: %d change(s)", len(changes))
	if buffered > 0 {
		summary += fmt.Sprintf(", %d buffered during the running pass", buffered)
	}
	formatter.Println("%s", formatter.Dim(summary))

	return nil
}

// NewChangesDiscardCmd creates the changes discard subcommand.
func NewChangesDiscardCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Drop all pending changes without syncing them",
		Long: `Drop every pending change without syncing it.

The stored bookmarks are untouched; only the change ledger is cleared.
The next incremental pass will have nothing to push.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChangesDiscard(force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "discard without confirmation")

	return cmd
}

func runChangesDiscard(force bool) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := context.Background()

	count, err := container.Ledger().ChangeCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending changes: %w", err)
	}

	if count == 0 {
		if formatter.Format() == output.FormatJSON {
			return formatter.JSON(DiscardResult{Discarded: 0})
		}
		formatter.Info("No changes pending")
		return nil
	}

	if !force && formatter.Format() != output.FormatJSON {
		p := newPrompter(formatter)
		confirmed, err := p.promptYesNo(fmt.Sprintf("Discard %d pending change(s)", count), false)
		if err != nil {
			return err
		}
		if !confirmed {
			formatter.Info("Discard cancelled")
			return nil
		}
	}

	if err := container.Ledger().Discard(ctx); err != nil {
		return fmt.Errorf("failed to discard changes: %w", err)
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(DiscardResult{Discarded: count})
	}

	formatter.Success("Discarded %d pending change(s)", count)
	return nil
}
