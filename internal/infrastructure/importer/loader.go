// Package importer loads bookmark export files and watches drop
// directories for new ones.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
)

// Entry represents one bookmark in an export file.
type Entry struct {
	URL     string   `json:"url" yaml:"url"`
	Title   string   `json:"title" yaml:"title"`
	Tags    []string `json:"tags" yaml:"tags"`
	Excerpt string   `json:"excerpt" yaml:"excerpt"`
}

// exportDocument is the wrapped export shape: a top-level bookmarks list.
type exportDocument struct {
	Bookmarks []Entry `json:"bookmarks" yaml:"bookmarks"`
}

// Loader errors.
var (
	ErrInvalidPath       = errors.New("invalid file path")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrEmptyFile         = errors.New("file is empty")
)

// Loader parses bookmark export files into domain bookmarks.
type Loader struct{}

// NewLoader creates a new export-file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile loads bookmarks from a JSON or YAML export file. Entries that
// fail validation (missing or non-http(s) URL) are skipped rather than
// failing the whole file; the skipped count is returned alongside the
// loaded bookmarks. Entries without a title fall back to their URL.
func (l *Loader) LoadFile(path string) ([]*bookmark.Bookmark, int, error) {
	if err := validatePath(path); err != nil {
		return nil, 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	entries, err := decodeEntries(data, unmarshalerFor(path))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	bookmarks := make([]*bookmark.Bookmark, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = strings.TrimSpace(e.URL)
		}

		b, err := bookmark.New(e.URL, title, e.Tags...)
		if err != nil {
			skipped++
			continue
		}
		b.Excerpt = strings.TrimSpace(e.Excerpt)
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, skipped, nil
}

// LoadDir loads every export file under dir. Files that fail to parse are
// collected into the joined error while the rest still load.
func (l *Loader) LoadDir(dir string) ([]*bookmark.Bookmark, int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to access directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%s is not a directory", dir)
	}

	var (
		loaded     []*bookmark.Bookmark
		skipped    int
		loadErrors []error
	)

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsExportFile(path) {
			return nil
		}

		bs, n, err := l.LoadFile(path)
		if err != nil {
			loadErrors = append(loadErrors, err)
			return nil // keep loading the other files
		}
		loaded = append(loaded, bs...)
		skipped += n
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}

	if len(loadErrors) > 0 {
		return loaded, skipped, errors.Join(loadErrors...)
	}
	return loaded, skipped, nil
}

// validatePath checks that the path points at a supported export file.
func validatePath(path string) error {
	if path == "" {
		return ErrInvalidPath
	}
	if !IsExportFile(path) {
		return fmt.Errorf("%w: expected .json, .yaml, or .yml extension, got %q",
			ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}

// IsExportFile reports whether the path has a supported export extension.
func IsExportFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// unmarshalerFor picks the decoder matching the file extension. The path
// has already passed validatePath.
func unmarshalerFor(path string) func([]byte, any) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return json.Unmarshal
	}
	return yaml.Unmarshal
}

// decodeEntries parses export data in either supported shape: a document
// with a top-level "bookmarks" list, or a bare list of entries.
func decodeEntries(data []byte, unmarshal func([]byte, any) error) ([]Entry, error) {
	var doc exportDocument
	if err := unmarshal(data, &doc); err == nil && doc.Bookmarks != nil {
		return doc.Bookmarks, nil
	}

	var entries []Entry
	if err := unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
