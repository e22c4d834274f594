package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/application"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// SystemStatus represents the overall state of the local store and sync.
type SystemStatus struct {
	Status          string        `json:"status"`
	Version         string        `json:"version"`
	ConfigPath      string        `json:"config_path,omitempty"`
	DatabasePath    string        `json:"database_path"`
	Bookmarks       int           `json:"bookmarks"`
	PendingChanges  int           `json:"pending_changes"`
	BufferedChanges int           `json:"buffered_changes,omitempty"`
	SyncVersion     int64         `json:"sync_version"`
	NextStrategy    string        `json:"next_strategy"`
	LastPass        *SyncPassInfo `json:"last_pass,omitempty"`
	Online          bool          `json:"online"`
	ForcedOffline   bool          `json:"forced_offline,omitempty"`
	Syncing         bool          `json:"syncing"`
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var checkConnectivity bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store and sync status",
		Long: `Display the state of the local bookmark store and synchronization.

This includes:
  • Bookmark count and database location
  • Pending changes waiting for the next pass
  • The last logged sync pass and the strategy the next one will use
  • Network connectivity

Use --check to bypass the cached connectivity result and probe again.`,
		Example: `  # Show status
  mk status

  # Probe connectivity instead of using the cached result
  mk status --check

  # Get status as JSON for scripting
  mk status -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(checkConnectivity)
		},
	}

	cmd.Flags().BoolVar(&checkConnectivity, "check", false, "probe connectivity instead of using the cached result")

	return cmd
}

func runStatus(checkConnectivity bool) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	status := getSystemStatus(container, checkConnectivity)

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(status)
	}

	return printStatusText(formatter, status)
}

// getSystemStatus assembles the status from the container.
func getSystemStatus(container *application.Container, checkConnectivity bool) SystemStatus {
	ctx := context.Background()

	status := SystemStatus{
		Version:      Version,
		ConfigPath:   globalFlags.ConfigFile,
		DatabasePath: container.Config().Database.Path,
	}
	if status.ConfigPath == "" {
		status.ConfigPath = "~/.markkeep/config.yaml"
	}
	if status.DatabasePath == "" {
		status.DatabasePath = "~/.markkeep/markkeep.db"
	}

	if count, err := container.BookmarkService().Count(ctx); err == nil {
		status.Bookmarks = count
	}
	if count, err := container.Ledger().ChangeCount(ctx); err == nil {
		status.PendingChanges = count
	}
	status.BufferedChanges = container.Ledger().OverflowCount()

	if version, err := container.SyncCoordinator().CurrentVersion(ctx); err == nil {
		status.SyncVersion = version
	}
	status.NextStrategy = string(domainSync.StrategyIncremental)
	if status.SyncVersion == domainSync.NeverSynced {
		status.NextStrategy = string(domainSync.StrategyFull)
	}

	if record, err := container.SyncHistory().LastPass(ctx); err == nil && record != nil {
		status.LastPass = &SyncPassInfo{
			ID:          record.ID,
			Strategy:    string(record.Strategy),
			Outcome:     string(record.Outcome),
			Changes:     record.Changes,
			Version:     record.Version,
			StartedAt:   record.StartedAt.Format(time.RFC3339),
			CompletedAt: record.CompletedAt.Format(time.RFC3339),
			Reason:      record.Reason,
		}
	}

	if checkConnectivity {
		container.Prober().Invalidate()
	}
	status.Online = container.Prober().IsOnline()
	status.ForcedOffline = container.Prober().Forced()
	status.Syncing = container.SyncCoordinator().Syncing()

	status.Status = determineOverallStatus(status)

	return status
}

// determineOverallStatus collapses the state into one word.
func determineOverallStatus(status SystemStatus) string {
	switch {
	case status.Syncing:
		return "syncing"
	case !status.Online:
		return "offline"
	default:
		return "ok"
	}
}

// printStatusText prints the status in human-readable format.
func printStatusText(formatter *output.Formatter, status SystemStatus) error {
	formatter.Header("Markkeep Status")
	formatter.Println("")

	formatter.Println("  %s  %s", formatter.Dim("System:"), getStatusIndicator(formatter, status.Status))
	formatter.Println("  %s  %s", formatter.Dim("Version:"), status.Version)
	formatter.Println("")

	formatter.SubHeader("Store")
	formatter.Println("  %s  %s", formatter.Dim("Database:"), status.DatabasePath)
	formatter.Println("  %s  %d", formatter.Dim("Bookmarks:"), status.Bookmarks)
	formatter.Println("  %s  %s", formatter.Dim("Config:"), status.ConfigPath)
	formatter.Println("")

	formatter.SubHeader("Sync")
	pendingLine := fmt.Sprintf("%d change(s) pending", status.PendingChanges)
	if status.BufferedChanges > 0 {
		pendingLine += fmt.Sprintf(" (%d buffered)", status.BufferedChanges)
	}
	formatter.Println("  %s  %s", formatter.Dim("Pending:"), pendingLine)

	if status.LastPass != nil {
		completed := status.LastPass.CompletedAt
		if t, err := time.Parse(time.RFC3339, completed); err == nil {
			completed = t.Local().Format("2006-01-02 15:04")
		}
		passLine := fmt.Sprintf("%s (%s) at %s", status.LastPass.Outcome, status.LastPass.Strategy, completed)
		formatter.Println("  %s  %s", formatter.Dim("Last pass:"), passLine)
		if status.LastPass.Reason != "" {
			formatter.Println("      %s", formatter.Colorize("Reason: "+status.LastPass.Reason, output.ColorRed))
		}
	} else {
		formatter.Println("  %s  %s", formatter.Dim("Last pass:"), "never")
	}

	formatter.Println("  %s  %s", formatter.Dim("Version:"), strconv.FormatInt(status.SyncVersion, 10))
	formatter.Println("  %s  %s", formatter.Dim("Next pass:"), status.NextStrategy)
	formatter.Println("")

	formatter.SubHeader("Connectivity")
	connectivity := "offline"
	if status.Online {
		connectivity = "online"
	}
	if status.ForcedOffline {
		connectivity += " (forced)"
	}
	formatter.Println("  %s  %s", formatter.Dim("Network:"), connectivity)
	if status.Syncing {
		formatter.Println("  %s  %s", formatter.Dim("Activity:"), "sync pass running")
	}

	return nil
}

// getStatusIndicator returns a colored status indicator.
func getStatusIndicator(formatter *output.Formatter, status string) string {
	switch status {
	case "ok":
		return formatter.Colorize("●", output.ColorGreen) + " " + formatter.Colorize("ok", output.ColorGreen)
	case "syncing":
		return formatter.Colorize("●", output.ColorYellow) + " " + formatter.Colorize("syncing", output.ColorYellow)
	case "offline":
		return formatter.Colorize("●", output.ColorYellow) + " " + formatter.Colorize("offline", output.ColorYellow)
	default:
		return formatter.Colorize("●", output.ColorDim) + " " + formatter.Colorize("unknown", output.ColorDim)
	}
}
