package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/importer"
)

// NewTestBookmark creates a bookmark for testing. The URL must be a valid
// http(s) URL or the result is nil.
func NewTestBookmark(rawURL, title string, tags ...string) *bookmark.Bookmark {
	b, _ := bookmark.New(rawURL, title, tags...)
	return b
}

// NewTestBookmarks creates n bookmarks with numbered example.com URLs.
func NewTestBookmarks(n int) []*bookmark.Bookmark {
	bookmarks := make([]*bookmark.Bookmark, 0, n)
	for i := 1; i <= n; i++ {
		b := NewTestBookmark(
			fmt.Sprintf("https://example.com/page-%d", i),
			fmt.Sprintf("Example Page %d", i),
			"example",
		)
		bookmarks = append(bookmarks, b)
	}
	return bookmarks
}

// NewTestExportJSON renders bookmarks as a JSON export document with a
// top-level "bookmarks" list, the shape the import loader reads.
func NewTestExportJSON(bookmarks ...*bookmark.Bookmark) []byte {
	doc := struct {
		Bookmarks []importer.Entry `json:"bookmarks"`
	}{Bookmarks: make([]importer.Entry, 0, len(bookmarks))}

	for _, b := range bookmarks {
		doc.Bookmarks = append(doc.Bookmarks, importer.Entry{
			URL:     b.URL,
			Title:   b.Title,
			Tags:    b.Tags,
			Excerpt: b.Excerpt,
		})
	}

	data, _ := json.MarshalIndent(doc, "", "  ")
	return data
}
