package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/application"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/config"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// executeCommand executes a cobra command with the given args.
func executeCommand(root *cobra.Command, args ...string) error {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	return root.Execute()
}

// setupTestHome points HOME at a temp directory with a config that forces
// offline mode, so commands never probe the network and every run gets a
// fresh database.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	configDir := filepath.Join(home, ".markkeep")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configYAML := "connectivity:\n  force_offline: true\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configYAML), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return home
}

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	if cmd == nil {
		t.Fatal("NewRootCmd returned nil")
	}

	if cmd.Use != "mk" {
		t.Errorf("expected Use='mk', got %q", cmd.Use)
	}

	// Check key subcommands exist
	wantSubcmds := []string{"version", "init", "add", "list", "update", "remove", "changes", "sync", "status", "import", "shell"}
	subcmds := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subcmds[sub.Name()] = true
	}

	for _, want := range wantSubcmds {
		if !subcmds[want] {
			t.Errorf("missing subcommand: %s", want)
		}
	}

	// Check persistent flags
	wantFlags := []string{"config", "output", "verbose"}
	for _, flag := range wantFlags {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag: %s", flag)
		}
	}
}

func TestVersionCmd_NoError(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"basic", []string{"version"}, false},
		{"short", []string{"version", "--short"}, false},
		{"json", []string{"version", "-o", "json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddCmd(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"valid url", []string{"add", "https://go.dev"}, false},
		{"with title and tags", []string{"add", "https://go.dev/doc", "--title", "Go Docs", "--tag", "go", "--tag", "docs"}, false},
		{"with excerpt", []string{"add", "https://go.dev/blog", "-t", "Go Blog", "-e", "The Go project blog"}, false},
		{"json output", []string{"add", "https://go.dev/ref/spec", "-o", "json"}, false},
		{"invalid scheme", []string{"add", "ftp://files.example.com"}, true},
		{"not a url", []string{"add", "not a url"}, true},
		{"missing args", []string{"add"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestListCmd_NoError(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"basic", []string{"list"}, false},
		{"alias", []string{"ls"}, false},
		{"with query", []string{"list", "golang"}, false},
		{"with tag", []string{"list", "--tag", "go"}, false},
		{"with limit", []string{"list", "-n", "5"}, false},
		{"json format", []string{"list", "-f", "json"}, false},
		{"table format", []string{"list", "--format", "table"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateCmd(t *testing.T) {
	setupTestHome(t)

	if err := executeCommand(NewRootCmd(), "add", "https://go.dev", "--title", "Go"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"update title", []string{"update", "https://go.dev", "--title", "The Go Programming Language"}, false},
		{"update tags", []string{"update", "https://go.dev", "--tag", "go", "--tag", "lang"}, false},
		{"clear tags", []string{"update", "https://go.dev", "--clear-tags"}, false},
		{"no fields", []string{"update", "https://go.dev"}, true},
		{"unknown bookmark", []string{"update", "https://unknown.example.com", "--title", "x"}, true},
		{"missing args", []string{"update"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemoveCmd(t *testing.T) {
	setupTestHome(t)

	if err := executeCommand(NewRootCmd(), "add", "https://go.dev", "--title", "Go"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"by url", []string{"remove", "https://go.dev"}, false},
		{"already removed", []string{"remove", "https://go.dev"}, true},
		{"unknown bookmark", []string{"rm", "https://unknown.example.com"}, true},
		{"missing args", []string{"remove"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChangesCmd_NoError(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"empty ledger", []string{"changes"}, false},
		{"json", []string{"changes", "-o", "json"}, false},
		{"discard empty ledger", []string{"changes", "discard"}, false},
		{"discard forced", []string{"changes", "discard", "--force"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChangesCmd_ListsRecordedChange(t *testing.T) {
	setupTestHome(t)

	if err := executeCommand(NewRootCmd(), "add", "https://go.dev", "--title", "Go"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := executeCommand(NewRootCmd(), "changes"); err != nil {
		t.Errorf("changes failed: %v", err)
	}

	// Discarding with --force clears the ledger without prompting.
	if err := executeCommand(NewRootCmd(), "changes", "discard", "--force"); err != nil {
		t.Errorf("discard failed: %v", err)
	}

	container := GetContainer()
	if container == nil {
		t.Fatal("container not initialized")
	}
	count, err := container.Ledger().ChangeCount(context.Background())
	if err != nil {
		t.Fatalf("ChangeCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty ledger after discard, got %d", count)
	}
}

func TestSyncCmd_Structure(t *testing.T) {
	cmd := NewSyncCmd()

	if cmd.Use != "sync" {
		t.Errorf("expected Use='sync', got %q", cmd.Use)
	}

	if cmd.Flags().Lookup("full") == nil {
		t.Error("missing --full flag")
	}

	wantSubcmds := map[string]bool{"history": false, "reset": false}
	for _, sub := range cmd.Commands() {
		if _, ok := wantSubcmds[sub.Name()]; ok {
			wantSubcmds[sub.Name()] = true
		}
	}
	for name, found := range wantSubcmds {
		if !found {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestSyncCmd_RefusedOffline(t *testing.T) {
	setupTestHome(t)

	// Forced offline means the pass is refused before any transmission.
	if err := executeCommand(NewRootCmd(), "sync"); err == nil {
		t.Error("expected offline sync to fail")
	}
	if err := executeCommand(NewRootCmd(), "sync", "--full"); err == nil {
		t.Error("expected offline full sync to fail")
	}
}

func TestSyncHistoryCmd_NoError(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"empty log", []string{"sync", "history"}, false},
		{"with limit", []string{"sync", "history", "-n", "3"}, false},
		{"json", []string{"sync", "history", "-o", "json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSyncResetCmd_NoError(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"basic", []string{"sync", "reset"}, false},
		{"purge history", []string{"sync", "reset", "--purge-history"}, false},
		{"json", []string{"sync", "reset", "-o", "json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusCmd_NoError(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"basic", []string{"status"}, false},
		{"check", []string{"status", "--check"}, false},
		{"json", []string{"status", "-o", "json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestImportCmd(t *testing.T) {
	setupTestHome(t)

	exportDir := t.TempDir()
	exportFile := filepath.Join(exportDir, "bookmarks.json")
	exportJSON := `{"bookmarks": [{"url": "https://go.dev", "title": "Go"}, {"url": "https://pkg.go.dev", "title": "Packages"}]}`
	if err := os.WriteFile(exportFile, []byte(exportJSON), 0600); err != nil {
		t.Fatalf("failed to write export file: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"single file", []string{"import", exportFile}, false},
		{"directory", []string{"import", exportDir}, false},
		{"json output", []string{"import", exportFile, "-o", "json"}, false},
		{"missing path", []string{"import"}, true},
		{"nonexistent path", []string{"import", filepath.Join(exportDir, "missing.json")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			err := executeCommand(cmd, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitCmd_JSONNonInteractive(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := executeCommand(NewRootCmd(), "init", "-o", "json"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	configFile := filepath.Join(home, ".markkeep", "config.yaml")
	if _, err := os.Stat(configFile); err != nil {
		t.Errorf("expected config file at %s: %v", configFile, err)
	}

	// Second run without --force leaves the existing config alone.
	if err := executeCommand(NewRootCmd(), "init", "-o", "json"); err != nil {
		t.Errorf("repeated init failed: %v", err)
	}
}

func TestShellCmd_Structure(t *testing.T) {
	cmd := NewShellCmd()

	if cmd.Use != "shell" {
		t.Errorf("expected Use='shell', got %q", cmd.Use)
	}
}

func TestHandleShellCommand(t *testing.T) {
	container := newTestContainer(t)
	formatter := output.NewFormatter(
		output.WithFormat(output.FormatText),
		output.WithColor(false),
		output.WithWriter(io.Discard),
	)

	tests := []struct {
		name     string
		line     string
		wantExit bool
		wantErr  bool
	}{
		{"help", "help", false, false},
		{"add", "add https://go.dev Go homepage", false, false},
		{"add missing url", "add", false, true},
		{"list", "list", false, false},
		{"list with query", "list go", false, false},
		{"changes", "changes", false, false},
		{"status", "status", false, false},
		{"remove", "remove https://go.dev", false, false},
		{"remove unknown", "remove https://unknown.example.com", false, true},
		{"unknown command", "frobnicate", false, true},
		{"quit", "quit", true, false},
		{"exit", "exit", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotExit, err := handleShellCommand(container, formatter, tt.line)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if gotExit != tt.wantExit {
				t.Errorf("shouldExit = %v, want %v", gotExit, tt.wantExit)
			}
		})
	}
}

func TestShellPrompt(t *testing.T) {
	container := newTestContainer(t)

	if got := shellPrompt(container); got != "mk> " {
		t.Errorf("empty ledger prompt = %q, want %q", got, "mk> ")
	}

	if _, err := container.BookmarkService().Add(context.Background(), "https://go.dev", "Go", nil, ""); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := shellPrompt(container); got != "mk[1]> " {
		t.Errorf("pending prompt = %q, want %q", got, "mk[1]> ")
	}
}

func TestGetSystemStatus(t *testing.T) {
	container := newTestContainer(t)

	status := getSystemStatus(container, false)

	if status.Status == "" {
		t.Error("system status should not be empty")
	}
	if status.Version == "" {
		t.Error("version should not be empty")
	}
	if status.NextStrategy != "full" {
		t.Errorf("expected first pass strategy 'full', got %q", status.NextStrategy)
	}
	if status.Online {
		t.Error("forced-offline container should report offline")
	}
	if !status.ForcedOffline {
		t.Error("expected forced offline flag")
	}
	if status.Syncing {
		t.Error("no pass should be running")
	}
}

func TestDetermineOverallStatus(t *testing.T) {
	tests := []struct {
		name   string
		status SystemStatus
		want   string
	}{
		{"online idle", SystemStatus{Online: true}, "ok"},
		{"offline", SystemStatus{Online: false}, "offline"},
		{"syncing", SystemStatus{Online: true, Syncing: true}, "syncing"},
		{"syncing wins over offline", SystemStatus{Online: false, Syncing: true}, "syncing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineOverallStatus(tt.status); got != tt.want {
				t.Errorf("determineOverallStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetStatusIndicator(t *testing.T) {
	formatter := output.NewFormatter(
		output.WithFormat(output.FormatText),
		output.WithColor(false),
	)

	tests := []struct {
		status string
		want   string
	}{
		{"ok", "● ok"},
		{"syncing", "● syncing"},
		{"offline", "● offline"},
		{"anything else", "● unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := getStatusIndicator(formatter, tt.status); got != tt.want {
				t.Errorf("getStatusIndicator(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "he..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"hello", 3, "hel"}, // maxLen <= 3 returns first maxLen chars
		{"", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := truncateString(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestVersionInfo(t *testing.T) {
	info := getVersionInfo()

	if info.Version == "" {
		t.Error("version should not be empty")
	}
	if info.GoVersion == "" {
		t.Error("go version should not be empty")
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("platform should be os/arch, got %q", info.Platform)
	}
}

// newTestContainer builds a container on a throwaway database with the
// network forced offline.
func newTestContainer(t *testing.T) *application.Container {
	t.Helper()

	cfg := config.NewDefaultConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "markkeep.db")
	cfg.Connectivity.ForceOffline = true

	container, err := application.NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer failed: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })

	return container
}
