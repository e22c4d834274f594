package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/markkeep/internal/application"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/importer"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/logging"
	"github.com/jbctechsolutions/markkeep/internal/presentation/cli/output"
)

// ImportResult holds the result of an import run for JSON output.
type ImportResult struct {
	Source  string `json:"source"`
	Files   int    `json:"files"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Pending int    `json:"pending_changes"`
}

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import bookmarks from export files",
		Long: `Import bookmarks from JSON or YAML export files.

The path names either a single export file or a directory to scan for
them. Entries are upserted by URL: existing bookmarks are updated, new
ones created, and each file lands in the change ledger as one batch.
Entries that fail validation are skipped and counted.

With --watch, markkeep keeps running and imports every export file
dropped into the watched directory (the path argument, or the configured
import.watch_dir). Stop it with Ctrl-C.`,
		Example: `  # Import a single export file
  mk import bookmarks.json

  # Import every export file in a directory
  mk import ~/exports

  # Watch the configured drop directory
  mk import --watch

  # Watch a specific directory
  mk import --watch ~/Downloads/bookmarks`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			if watch {
				return runImportWatch(path)
			}
			if path == "" {
				return fmt.Errorf("a file or directory to import is required unless --watch is set")
			}
			return runImport(path)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch a drop directory and import new export files")

	return cmd
}

func runImport(path string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}

	if info.IsDir() {
		return importDirectory(container, formatter, path)
	}

	created, updated, skipped, err := importFile(container, path)
	if err != nil {
		return err
	}

	return reportImport(container, formatter, ImportResult{
		Source:  path,
		Files:   1,
		Created: created,
		Updated: updated,
		Skipped: skipped,
	})
}

// importDirectory imports every export file under dir, walking recursively.
func importDirectory(container *application.Container, formatter *output.Formatter, dir string) error {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !importer.IsExportFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	if len(files) == 0 {
		if formatter.Format() == output.FormatJSON {
			return formatter.JSON(ImportResult{Source: dir})
		}
		formatter.Info("No export files found in %s", dir)
		return nil
	}

	var bar *output.ProgressBar
	if formatter.Format() != output.FormatJSON {
		bar = output.NewProgressBar(len(files), "Importing")
	}

	result := ImportResult{Source: dir, Files: len(files)}
	var importErrors []error

	for _, file := range files {
		created, updated, skipped, err := importFile(container, file)
		if err != nil {
			importErrors = append(importErrors, fmt.Errorf("%s: %w", file, err))
		} else {
			result.Created += created
			result.Updated += updated
			result.Skipped += skipped
		}
		if bar != nil {
			bar.Increment()
		}
	}

	if bar != nil {
		bar.Complete()
	}

	for _, importErr := range importErrors {
		formatter.Warning("%s", importErr.Error())
	}
	if len(importErrors) == len(files) {
		return fmt.Errorf("all %d export file(s) failed to import", len(files))
	}

	return reportImport(container, formatter, result)
}

// importFile loads one export file and upserts its entries as a batch.
func importFile(container *application.Container, path string) (created, updated, skipped int, err error) {
	ctx := context.Background()
	logger := container.Logger()
	start := time.Now()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	logging.LogImportStart(ctx, logger, path, format)

	ctx, span := container.Tracer().StartImportSpan(ctx, path, format)

	loaded, skipped, err := container.ImportLoader().LoadFile(path)
	if err != nil {
		span.EndWithError(err)
		logging.LogImportFailed(ctx, logger, path, err)
		return 0, 0, skipped, err
	}

	summary, err := container.BookmarkService().Import(ctx, loaded)
	if err != nil {
		span.EndWithError(err)
		logging.LogImportFailed(ctx, logger, path, err)
		return 0, 0, skipped, err
	}

	span.SetCounts(summary.Created+summary.Updated, skipped)
	span.End()
	logging.LogImportComplete(ctx, logger, path, summary.Created+summary.Updated, skipped, time.Since(start))

	return summary.Created, summary.Updated, skipped, nil
}

// reportImport renders the aggregate result of an import run.
func reportImport(container *application.Container, formatter *output.Formatter, result ImportResult) error {
	if pending, err := container.Ledger().ChangeCount(context.Background()); err == nil {
		result.Pending = pending
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(result)
	}

	formatter.Success("Import complete")
	formatter.Item("Created", fmt.Sprintf("%d", result.Created))
	formatter.Item("Updated", fmt.Sprintf("%d", result.Updated))
	if result.Skipped > 0 {
		formatter.Item("Skipped", fmt.Sprintf("%d", result.Skipped))
	}
	formatter.Println("")
	formatter.Println("%s", formatter.Dim(fmt.Sprintf("%d change(s) pending sync", result.Pending)))

	return nil
}

func runImportWatch(dir string) error {
	formatter := GetFormatter()
	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	if dir == "" {
		dir = container.Config().Import.WatchDir
	}
	if dir == "" {
		return fmt.Errorf("no watch directory: pass one or set import.watch_dir in the config")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := container.NewImportWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	ctx := context.Background()
	if err := watcher.Watch(ctx, dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	formatter.Info("Watching %s for export files (Ctrl-C to stop)", dir)

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			created, updated, skipped, err := importFile(container, event.Path)
			if err != nil {
				formatter.Warning("Import of %s failed: %v", event.Path, err)
				continue
			}
			formatter.Success("%s: %d created, %d updated, %d skipped",
				filepath.Base(event.Path), created, updated, skipped)
		case watchErr, ok := <-watcher.Errors():
			if !ok {
				return nil
			}
			formatter.Warning("Watcher error: %v", watchErr)
		}
	}
}
