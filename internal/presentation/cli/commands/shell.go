package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/application"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// NewShellCmd creates the shell command for interactive mode.
func NewShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive bookmark shell",
		Long: `Start an interactive shell session.

The shell provides a REPL (Read-Eval-Print Loop) for working with the
bookmark store without re-running the binary for every command. The
prompt shows how many changes are pending sync.

Commands:
  add <url> [title]    - Save a bookmark
  list [query]         - List bookmarks, optionally filtered
  remove <url-or-id>   - Remove a bookmark
  changes              - Show pending changes
  sync [full]          - Run a synchronization pass
  status               - Show a one-line status summary
  help                 - Show this help message
  quit, exit           - Leave the shell

Examples:
  # Start the shell
  mk shell`,
		Args: cobra.NoArgs,
		RunE: runShell,
	}

	return cmd
}

// runShell executes the interactive shell REPL.
func runShell(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	formatter.Header("Markkeep Shell")
	formatter.Println("")
	formatter.Info("Type a command and press Enter. Type 'help' for commands.")
	formatter.Println("")

	rl, err := readline.New(shellPrompt(container))
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		shouldExit, err := handleShellCommand(container, formatter, line)
		if err != nil {
			formatter.Error("%s", err.Error())
		}
		if shouldExit {
			break
		}

		// The pending count may have moved; refresh the prompt.
		rl.SetPrompt(shellPrompt(container))
	}

	formatter.Info("Bye!")
	return nil
}

// shellPrompt renders the prompt, including the pending-change count when
// there is one.
func shellPrompt(container *application.Container) string {
	count, err := container.Ledger().ChangeCount(context.Background())
	if err != nil || count == 0 {
		return "mk> "
	}
	return fmt.Sprintf("mk[%d]> ", count)
}

// handleShellCommand dispatches one shell line.
// Returns (shouldExit, error).
func handleShellCommand(container *application.Container, formatter *output.Formatter, line string) (bool, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false, nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]
	ctx := context.Background()

	switch command {
	case "quit", "exit":
		return true, nil

	case "help":
		formatter.Header("Shell Commands")
		formatter.Item("add <url> [title]", "Save a bookmark")
		formatter.Item("list [query]", "List bookmarks, optionally filtered")
		formatter.Item("remove <url-or-id>", "Remove a bookmark")
		formatter.Item("changes", "Show pending changes")
		formatter.Item("sync [full]", "Run a synchronization pass")
		formatter.Item("status", "Show a one-line status summary")
		formatter.Item("quit, exit", "Leave the shell")
		formatter.Println("")
		return false, nil

	case "add":
		if len(args) < 1 {
			return false, fmt.Errorf("usage: add <url> [title]")
		}
		url := args[0]
		title := strings.Join(args[1:], " ")
		if title == "" {
			title = url
		}
		b, err := container.BookmarkService().Add(ctx, url, title, nil, "")
		if err != nil {
			return false, err
		}
		formatter.Success("Saved %s", b.URL)
		return false, nil

	case "list", "ls":
		query := strings.Join(args, " ")
		items, err := container.BookmarkService().List(ctx, &bookmark.Filter{Query: query})
		if err != nil {
			return false, err
		}
		if len(items) == 0 {
			formatter.Info("No bookmarks found")
			return false, nil
		}
		for _, b := range items {
			tags := ""
			if len(b.Tags) > 0 {
				tags = " " + formatter.Dim("["+strings.Join(b.Tags, ", ")+"]")
			}
			formatter.Println("  %s  %s%s", formatter.Bold(truncateString(b.Title, 40)), b.URL, tags)
		}
		formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d bookmark(s)", len(items))))
		return false, nil

	case "remove", "rm":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: remove <url-or-id>")
		}
		removed, err := container.BookmarkService().Remove(ctx, args[0])
		if err != nil {
			return false, err
		}
		formatter.Success("Removed %s", removed.URL)
		return false, nil

	case "changes":
		pending, err := container.Ledger().PendingChanges(ctx)
		if err != nil {
			return false, err
		}
		if pending.IsEmpty() {
			formatter.Info("No changes pending")
			return false, nil
		}
		for _, change := range pending.Values() {
			changeType := "update"
			if change.Payload.Deleted {
				changeType = "delete"
			}
			formatter.Println("  %-7s %s", changeType, change.Key)
		}
		formatter.Println("%s", formatter.Dim(fmt.Sprintf("Total: %d change(s)", pending.Len())))
		return false, nil

	case "sync":
		full := len(args) == 1 && strings.EqualFold(args[0], "full")
		var err error
		if full {
			_, err = container.SyncCoordinator().SyncAllBookmarks(ctx)
		} else {
			_, err = container.SyncCoordinator().StartSync(ctx)
		}
		if err != nil {
			return false, err
		}
		if record, recordErr := container.SyncHistory().LastPass(ctx); recordErr == nil && record != nil {
			formatter.Success("Synced %d change(s) (%s pass, version %d)",
				record.Changes, record.Strategy, record.Version)
		} else {
			formatter.Success("Sync complete")
		}
		return false, nil

	case "status":
		count, _ := container.BookmarkService().Count(ctx)
		pending, _ := container.Ledger().ChangeCount(ctx)
		version, _ := container.SyncCoordinator().CurrentVersion(ctx)
		versionLabel := strconv.FormatInt(version, 10)
		if version == domainSync.NeverSynced {
			versionLabel = "never synced"
		}
		formatter.Println("  %d bookmark(s), %d change(s) pending, sync version %s",
			count, pending, versionLabel)
		return false, nil

	default:
		return false, fmt.Errorf("unknown command %q (type 'help' for commands)", command)
	}
}
