package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	domainErrors "github.com/jbctechsolutions/markkeep/internal/domain/errors"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// SyncResult holds the result of a sync pass for JSON output.
type SyncResult struct {
	Outcome     string `json:"outcome"`
	Strategy    string `json:"strategy,omitempty"`
	Changes     int    `json:"changes"`
	Version     int64  `json:"version,omitempty"`
	CompletedAt string `json:"completed_at"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	Pending     int    `json:"pending_changes"`
}

// SyncPassInfo represents one logged sync pass for display.
type SyncPassInfo struct {
	ID          string `json:"id"`
	Strategy    string `json:"strategy"`
	Outcome     string `json:"outcome"`
	Changes     int    `json:"changes"`
	Version     int64  `json:"version"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	Reason      string `json:"reason,omitempty"`
}

// SyncHistoryOutput represents the output of the sync history command.
type SyncHistoryOutput struct {
	Passes []SyncPassInfo `json:"passes"`
	Count  int            `json:"count"`
}

// SyncResetResult holds the result of the sync reset command.
type SyncResetResult struct {
	Reset        bool `json:"reset"`
	PurgedPasses int  `json:"purged_passes,omitempty"`
}

// NewSyncCmd creates the sync command.
func NewSyncCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a synchronization pass",
		Long: `Run one synchronization pass.

The first pass on a device pushes a snapshot of every bookmark; every
pass after that pushes only the accumulated pending changes. A pass is
refused when another one is already running or when the device is
offline, and nothing recorded locally is lost either way.

Examples:
  # Sync pending changes (or the full collection on first run)
  mk sync

  # Force a full pass regardless of sync state
  mk sync --full

  # Show past passes
  mk sync history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(full)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "push a snapshot of every bookmark")

	cmd.AddCommand(NewSyncHistoryCmd())
	cmd.AddCommand(NewSyncResetCmd())

	return cmd
}

func runSync(full bool) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := context.Background()
	coordinator := container.SyncCoordinator()

	var spinner *output.Spinner
	if formatter.Format() != output.FormatJSON {
		spinner = output.NewSpinner("Syncing bookmarks...")
		spinner.Start()
	}

	var result *domainSync.Result
	var err error
	if full {
		result, err = coordinator.SyncAllBookmarks(ctx)
	} else {
		result, err = coordinator.StartSync(ctx)
	}

	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Sync failed")
		}
		switch {
		case errors.Is(err, domainErrors.ErrSyncInProgress):
			return fmt.Errorf("a sync pass is already running; try again when it finishes")
		case errors.Is(err, domainErrors.ErrNetworkUnavailable):
			return fmt.Errorf("device is offline; changes stay pending until the next pass")
		default:
			return err
		}
	}

	if spinner != nil {
		spinner.StopWithSuccess("Sync complete")
	}

	// The pass log carries the detail of what just ran.
	record, recordErr := container.SyncHistory().LastPass(ctx)

	pending := 0
	if count, countErr := container.Ledger().ChangeCount(ctx); countErr == nil {
		pending = count
	}

	if formatter.Format() == output.FormatJSON {
		passResult := SyncResult{
			Outcome:     string(result.Outcome),
			CompletedAt: result.CompletedAt.Format(time.RFC3339),
			Pending:     pending,
		}
		if recordErr == nil && record != nil {
			passResult.Strategy = string(record.Strategy)
			passResult.Changes = record.Changes
			passResult.Version = record.Version
			passResult.DurationMS = record.Duration().Milliseconds()
		}
		return formatter.JSON(passResult)
	}

	formatter.Println("")
	if recordErr == nil && record != nil {
		formatter.Item("Strategy", string(record.Strategy))
		formatter.Item("Changes", strconv.Itoa(record.Changes))
		formatter.Item("Version", strconv.FormatInt(record.Version, 10))
		formatter.Item("Duration", record.Duration().Round(time.Millisecond).String())
	}
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("%d change(s) pending", pending)))

	return nil
}

// NewSyncHistoryCmd creates the sync history subcommand.
func NewSyncHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past sync passes",
		Long: `Display the log of synchronization passes, newest first.

Each entry shows the strategy, outcome, number of changes pushed, and the
version the pass advanced to. Failed passes carry the failure reason.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncHistory(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum passes to show (0 for all)")

	return cmd
}

func runSyncHistory(limit int) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := context.Background()

	records, err := container.SyncHistory().ListPasses(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load sync history: %w", err)
	}

	passes := make([]SyncPassInfo, 0, len(records))
	for _, record := range records {
		passes = append(passes, SyncPassInfo{
			ID:          record.ID,
			Strategy:    string(record.Strategy),
			Outcome:     string(record.Outcome),
			Changes:     record.Changes,
			Version:     record.Version,
			StartedAt:   record.StartedAt.Format(time.RFC3339),
			CompletedAt: record.CompletedAt.Format(time.RFC3339),
			Reason:      record.Reason,
		})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(SyncHistoryOutput{Passes: passes, Count: len(passes)})
	}

	if len(passes) == 0 {
		formatter.Info("No sync passes logged")
		formatter.Println("%s", formatter.Dim("Run 'mk sync' to push your bookmarks."))
		return nil
	}

	tableData := output.TableData{
		Columns: []output.TableColumn{
			{Header: "STARTED", Width: 16, Align: output.AlignLeft},
			{Header: "STRATEGY", Width: 11, Align: output.AlignLeft},
			{Header: "OUTCOME", Width: 8, Align: output.AlignLeft},
			{Header: "CHANGES", Width: 7, Align: output.AlignRight},
			{Header: "VERSION", Width: 14, Align: output.AlignRight},
			{Header: "DETAIL", Width: 20, Align: output.AlignLeft},
		},
		Rows: make([][]string, 0, len(passes)),
	}

	for i, pass := range passes {
		record := records[i]

		detail := record.Duration().Round(time.Millisecond).String()
		if pass.Reason != "" {
			detail = pass.Reason
		}

		tableData.Rows = append(tableData.Rows, []string{
			record.StartedAt.Local().Format("2006-01-02 15:04"),
			pass.Strategy,
			pass.Outcome,
			strconv.Itoa(pass.Changes),
			strconv.FormatInt(pass.Version, 10),
			truncateString(detail, 20),
		})
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Bold("Sync History"))
	formatter.Println("")

	if err := formatter.Table(tableData); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d pass(es)", len(passes))))

	return nil
}

// NewSyncResetCmd creates the sync reset subcommand.
func NewSyncResetCmd() *cobra.Command {
	var purgeHistory bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the sync version so the next pass pushes everything",
		Long: `Forget the persisted sync version.

The next pass will push a snapshot of every bookmark, as if the device
had never synced. Pending changes are untouched. With --purge-history
the pass log is cleared as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncReset(purgeHistory)
		},
	}

	cmd.Flags().BoolVar(&purgeHistory, "purge-history", false, "also clear the sync pass log")

	return cmd
}

func runSyncReset(purgeHistory bool) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	ctx := context.Background()

	if err := container.SyncCoordinator().ResetVersionCache(ctx); err != nil {
		return fmt.Errorf("failed to reset sync version: %w", err)
	}

	purged := 0
	if purgeHistory {
		n, err := container.SyncHistory().Purge(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge sync history: %w", err)
		}
		purged = n
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(SyncResetResult{Reset: true, PurgedPasses: purged})
	}

	formatter.Success("Sync version cleared; the next pass will push the full collection")
	if purgeHistory {
		formatter.Info("Purged %d logged pass(es)", purged)
	}

	return nil
}
