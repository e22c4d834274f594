package importer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// writeExport writes an export file into dir and returns its path.
func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Error("NewLoader() returned nil")
	}
}

func TestLoadFile_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeExport(t, tmpDir, "export.json", `{
  "bookmarks": [
    {
      "url": "https://go.dev",
      "title": "The Go Programming Language",
      "tags": ["Go", "Reference"],
      "excerpt": "Official Go site"
    },
    {
      "url": "https://pkg.go.dev",
      "title": "Go Packages"
    }
  ]
}`)

	loader := NewLoader()
	got, skipped, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(got) != 2 {
		t.Fatalf("len(bookmarks) = %d, want 2", len(got))
	}

	first := got[0]
	if first.URL != "https://go.dev" {
		t.Errorf("URL = %q, want %q", first.URL, "https://go.dev")
	}
	if first.Title != "The Go Programming Language" {
		t.Errorf("Title = %q, want %q", first.Title, "The Go Programming Language")
	}
	if want := []string{"go", "reference"}; !reflect.DeepEqual(first.Tags, want) {
		t.Errorf("Tags = %v, want %v", first.Tags, want)
	}
	if first.Excerpt != "Official Go site" {
		t.Errorf("Excerpt = %q, want %q", first.Excerpt, "Official Go site")
	}
	if first.ID == "" {
		t.Error("expected generated ID")
	}
	if got[1].ID == first.ID {
		t.Error("expected distinct IDs per bookmark")
	}
}

func TestLoadFile_JSONBareList(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeExport(t, tmpDir, "export.json", `[
  {"url": "https://go.dev", "title": "Go"},
  {"url": "https://pkg.go.dev", "title": "Packages"}
]`)

	loader := NewLoader()
	got, skipped, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(got) != 2 {
		t.Fatalf("len(bookmarks) = %d, want 2", len(got))
	}
}

func TestLoadFile_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeExport(t, tmpDir, "export.yaml", `
bookmarks:
  - url: https://go.dev
    title: The Go Programming Language
    tags:
      - go
      - reference
    excerpt: Official Go site
  - url: https://pkg.go.dev
    title: Go Packages
`)

	loader := NewLoader()
	got, skipped, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(got) != 2 {
		t.Fatalf("len(bookmarks) = %d, want 2", len(got))
	}
	if got[0].Excerpt != "Official Go site" {
		t.Errorf("Excerpt = %q, want %q", got[0].Excerpt, "Official Go site")
	}
}

func TestLoadFile_YAMLBareList(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeExport(t, tmpDir, "export.yml", `
- url: https://go.dev
  title: Go
- url: https://pkg.go.dev
  title: Packages
`)

	loader := NewLoader()
	got, skipped, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(got) != 2 {
		t.Fatalf("len(bookmarks) = %d, want 2", len(got))
	}
}

func TestLoadFile_SkipsInvalidEntries(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeExport(t, tmpDir, "export.json", `[
  {"url": "https://go.dev", "title": "Go"},
  {"url": "ftp://files.example.com", "title": "Not Web"},
  {"title": "No URL At All"}
]`)

	loader := NewLoader()
	got, skipped, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(bookmarks) = %d, want 1", len(got))
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if got[0].URL != "https://go.dev" {
		t.Errorf("URL = %q, want %q", got[0].URL, "https://go.dev")
	}
}

func TestLoadFile_TitleFallsBackToURL(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeExport(t, tmpDir, "export.json", `[{"url": "https://go.dev"}]`)

	loader := NewLoader()
	got, skipped, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(got) != 1 {
		t.Fatalf("len(bookmarks) = %d, want 1", len(got))
	}
	if got[0].Title != "https://go.dev" {
		t.Errorf("Title = %q, want the URL as fallback", got[0].Title)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("empty path", func(t *testing.T) {
		_, _, err := NewLoader().LoadFile("")
		if !errors.Is(err, ErrInvalidPath) {
			t.Errorf("error = %v, want ErrInvalidPath", err)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeExport(t, tmpDir, "export.txt", "not an export")
		_, _, err := NewLoader().LoadFile(path)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := NewLoader().LoadFile(filepath.Join(tmpDir, "missing.json"))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeExport(t, tmpDir, "empty.json", "  \n")
		_, _, err := NewLoader().LoadFile(path)
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("error = %v, want ErrEmptyFile", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := writeExport(t, tmpDir, "broken.json", `{"bookmarks": [`)
		_, _, err := NewLoader().LoadFile(path)
		if err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		path := writeExport(t, tmpDir, "broken.yaml", "bookmarks: [\n  broken")
		_, _, err := NewLoader().LoadFile(path)
		if err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadDir(t *testing.T) {
	t.Run("loads every export file", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeExport(t, tmpDir, "a.json", `[{"url": "https://go.dev", "title": "Go"}]`)
		writeExport(t, tmpDir, "b.yaml", "- url: https://pkg.go.dev\n  title: Packages\n")
		writeExport(t, tmpDir, "notes.txt", "ignored")

		nested := filepath.Join(tmpDir, "nested")
		if err := os.Mkdir(nested, 0755); err != nil {
			t.Fatalf("failed to create nested dir: %v", err)
		}
		writeExport(t, nested, "c.yml", "- url: https://blog.golang.org\n  title: Blog\n")

		got, skipped, err := NewLoader().LoadDir(tmpDir)
		if err != nil {
			t.Fatalf("LoadDir() error = %v", err)
		}
		if skipped != 0 {
			t.Errorf("skipped = %d, want 0", skipped)
		}
		if len(got) != 3 {
			t.Errorf("len(bookmarks) = %d, want 3", len(got))
		}
	})

	t.Run("keeps loading past broken files", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeExport(t, tmpDir, "good.json", `[{"url": "https://go.dev", "title": "Go"}]`)
		writeExport(t, tmpDir, "bad.json", `{"bookmarks": [`)

		got, _, err := NewLoader().LoadDir(tmpDir)
		if err == nil {
			t.Error("expected joined error for broken file")
		}
		if len(got) != 1 {
			t.Errorf("len(bookmarks) = %d, want 1", len(got))
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, _, err := NewLoader().LoadDir(filepath.Join(t.TempDir(), "missing"))
		if err == nil {
			t.Error("expected error for missing directory")
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := writeExport(t, tmpDir, "export.json", `[]`)
		_, _, err := NewLoader().LoadDir(path)
		if err == nil {
			t.Error("expected error for non-directory path")
		}
	})
}
