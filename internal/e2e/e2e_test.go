// Package e2e provides end-to-end integration tests for markkeep.
package e2e

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/testutil"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/commands"
)

// executeCommand executes a cobra command with the given args and captures output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// setupTestHome points HOME at a temp directory with a config that forces
// offline mode, so commands never probe the network and every test gets a
// fresh store.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".markkeep")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	testutil.WriteFile(t, configDir, "config.yaml", "connectivity:\n  force_offline: true\n")

	return home
}

// TestE2E_CLICommands tests that CLI commands execute with the expected outcome.
func TestE2E_CLICommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		// Version command
		{"version", []string{"version"}, false},
		{"version short", []string{"version", "--short"}, false},
		{"version json", []string{"version", "-o", "json"}, false},

		// List command
		{"list empty", []string{"list"}, false},
		{"list alias ls", []string{"ls"}, false},
		{"list json", []string{"list", "-f", "json"}, false},
		{"list table", []string{"list", "--format", "table"}, false},
		{"list with query", []string{"list", "golang"}, false},

		// Add command
		{"add", []string{"add", "https://go.dev", "--title", "Go"}, false},
		{"add default title", []string{"add", "https://go.dev"}, false},
		{"add invalid url", []string{"add", "not-a-url"}, true},
		{"add missing args", []string{"add"}, true},

		// Update and remove against an empty store
		{"update unknown", []string{"update", "https://missing.example.com", "--title", "New"}, true},
		{"remove unknown", []string{"remove", "https://missing.example.com"}, true},

		// Changes command
		{"changes empty", []string{"changes"}, false},
		{"changes discard empty", []string{"changes", "discard", "--force"}, false},

		// Sync commands
		// Note: The test config forces offline mode, so passes are refused.
		{"sync offline", []string{"sync"}, true},
		{"sync full offline", []string{"sync", "--full"}, true},
		{"sync history", []string{"sync", "history"}, false},
		{"sync history json", []string{"sync", "history", "-o", "json"}, false},
		{"sync reset", []string{"sync", "reset"}, false},

		// Status command
		{"status", []string{"status"}, false},
		{"status check", []string{"status", "--check"}, false},
		{"status json", []string{"status", "-o", "json"}, false},

		// Import command
		{"import missing path", []string{"import"}, true},
		{"import nonexistent", []string{"import", "/nonexistent/export.json"}, true},

		// Help
		{"help", []string{"--help"}, false},
		{"help add", []string{"add", "--help"}, false},
		{"init help", []string{"init", "--help"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestHome(t)
			cmd := commands.NewRootCmd()
			_, err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("command %v: error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

// TestE2E_BookmarkLifecycle tests a realistic user workflow: add, update, and
// remove bookmarks, then check what the change ledger and pass log recorded.
func TestE2E_BookmarkLifecycle(t *testing.T) {
	setupTestHome(t)
	ctx := context.Background()

	steps := [][]string{
		{"add", "https://go.dev", "--title", "The Go Programming Language", "--tag", "language"},
		{"add", "https://pkg.go.dev", "--title", "Package Docs"},
		{"list"},
		{"update", "https://go.dev", "--title", "Go"},
		{"changes"},
		{"status"},
		{"remove", "https://pkg.go.dev"},
	}
	for _, args := range steps {
		if _, err := executeCommand(commands.NewRootCmd(), args...); err != nil {
			t.Fatalf("command %v failed: %v", args, err)
		}
	}

	container := commands.GetContainer()
	if container == nil {
		t.Fatal("container not initialized")
	}

	count, err := container.BookmarkService().Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 1)

	// Changes are keyed by URL: the update collapsed into go.dev's add, and
	// the remove collapsed into pkg.go.dev's add as a tombstone.
	pending, err := container.Ledger().ChangeCount(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, pending, 2)

	// The offline pass is refused and leaves every pending change in place.
	_, err = executeCommand(commands.NewRootCmd(), "sync")
	if err == nil {
		t.Fatal("expected offline sync to fail")
	}
	if !strings.Contains(err.Error(), "offline") {
		t.Fatalf("sync error = %v, want offline refusal", err)
	}

	container = commands.GetContainer()
	pending, err = container.Ledger().ChangeCount(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, pending, 2)

	record, err := container.SyncHistory().LastPass(ctx)
	testutil.AssertNoError(t, err)
	if record == nil {
		t.Fatal("expected the refused pass in the history log")
	}
	if record.Outcome != domainSync.OutcomeFailed {
		t.Errorf("Outcome = %q, want failed", record.Outcome)
	}
	if record.Reason != "NETWORK" {
		t.Errorf("Reason = %q, want NETWORK", record.Reason)
	}
}

// TestE2E_ImportFlow tests importing an export file and re-importing it.
func TestE2E_ImportFlow(t *testing.T) {
	setupTestHome(t)
	ctx := context.Background()

	exportDir := testutil.TempDir(t)
	data := testutil.NewTestExportJSON(testutil.NewTestBookmarks(3)...)
	exportPath := testutil.WriteFile(t, exportDir, "export.json", string(data))

	if _, err := executeCommand(commands.NewRootCmd(), "import", exportPath); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	container := commands.GetContainer()
	if container == nil {
		t.Fatal("container not initialized")
	}

	count, err := container.BookmarkService().Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 3)

	pending, err := container.Ledger().ChangeCount(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, pending, 3)

	// Importing the same file again updates in place instead of duplicating.
	if _, err := executeCommand(commands.NewRootCmd(), "import", exportPath); err != nil {
		t.Fatalf("re-import failed: %v", err)
	}

	container = commands.GetContainer()
	count, err = container.BookmarkService().Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 3)
}

// TestE2E_ImportDirectory tests importing every export file under a directory.
func TestE2E_ImportDirectory(t *testing.T) {
	setupTestHome(t)
	ctx := context.Background()

	exportDir := testutil.TempDir(t)
	first := testutil.NewTestExportJSON(testutil.NewTestBookmark("https://go.dev", "Go"))
	second := testutil.NewTestExportJSON(testutil.NewTestBookmark("https://pkg.go.dev", "Package Docs"))
	testutil.WriteFile(t, exportDir, "first.json", string(first))
	testutil.WriteFile(t, exportDir, "second.json", string(second))

	if _, err := executeCommand(commands.NewRootCmd(), "import", exportDir); err != nil {
		t.Fatalf("import directory failed: %v", err)
	}

	container := commands.GetContainer()
	if container == nil {
		t.Fatal("container not initialized")
	}

	count, err := container.BookmarkService().Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, count, 2)
}

// TestE2E_InitCreatesConfig tests that init writes a config file in JSON mode.
func TestE2E_InitCreatesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// JSON mode runs non-interactively with defaults.
	if _, err := executeCommand(commands.NewRootCmd(), "init", "-o", "json"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	configPath := filepath.Join(home, ".markkeep", "config.yaml")
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config not created: %v", err)
	}

	// A second run without --force leaves the existing config alone.
	if _, err := executeCommand(commands.NewRootCmd(), "init", "-o", "json"); err != nil {
		t.Fatalf("repeat init failed: %v", err)
	}
}

// TestE2E_SubcommandStructure verifies all expected subcommands exist.
func TestE2E_SubcommandStructure(t *testing.T) {
	rootCmd := commands.NewRootCmd()

	expectedCmds := []string{
		"version",
		"init",
		"add",
		"list",
		"update",
		"remove",
		"changes",
		"sync",
		"status",
		"import",
		"shell",
	}

	// Get all subcommand names
	subcmds := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		subcmds[cmd.Name()] = true
	}

	for _, expected := range expectedCmds {
		if !subcmds[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

// TestE2E_GlobalFlags verifies global flags are available.
func TestE2E_GlobalFlags(t *testing.T) {
	rootCmd := commands.NewRootCmd()

	expectedFlags := []string{"config", "output", "verbose"}

	for _, flag := range expectedFlags {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected global flag %q not found", flag)
		}
	}
}

// TestE2E_CommandAliases tests command aliases dispatch to the real command.
func TestE2E_CommandAliases(t *testing.T) {
	setupTestHome(t)

	if _, err := executeCommand(commands.NewRootCmd(), "ls"); err != nil {
		t.Errorf("alias ls: unexpected error %v", err)
	}

	// rm reaching the not-found path proves it resolved to remove.
	_, err := executeCommand(commands.NewRootCmd(), "rm", "https://missing.example.com")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("alias rm: error = %v, want not-found from remove", err)
	}
}

// TestE2E_ErrorMessages tests that error messages are helpful.
func TestE2E_ErrorMessages(t *testing.T) {
	tests := []struct {
		name          string
		args          []string
		errorContains string
	}{
		{
			name:          "add without args",
			args:          []string{"add"},
			errorContains: "accepts",
		},
		{
			name:          "add invalid url",
			args:          []string{"add", "not-a-url"},
			errorContains: "invalid bookmark URL",
		},
		{
			name:          "update unknown bookmark",
			args:          []string{"update", "https://missing.example.com", "--title", "New"},
			errorContains: "not found",
		},
		{
			name:          "update without fields",
			args:          []string{"update", "https://missing.example.com"},
			errorContains: "nothing to update",
		},
		{
			name:          "sync while offline",
			args:          []string{"sync"},
			errorContains: "offline",
		},
		{
			name:          "import without path",
			args:          []string{"import"},
			errorContains: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestHome(t)
			cmd := commands.NewRootCmd()
			_, err := executeCommand(cmd, tt.args...)
			if err == nil {
				t.Fatalf("command %v: expected error", tt.args)
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.errorContains)) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errorContains)
			}
		})
	}
}
