package ports

import (
	"context"

	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
)

// -----------------------------------------------------------------------------
// Bookmark Storage Port
// -----------------------------------------------------------------------------

// BookmarkStoragePort defines the interface for the local bookmark store.
// This port provides CRUD operations plus the bulk read used by full
// synchronization passes.
//
// Implementations might use SQLite or an in-memory map for tests.
// Methods return domain errors on failure.
type BookmarkStoragePort interface {
	// Create persists a new bookmark.
	// Returns ErrDuplicateBookmark if a bookmark with the same URL exists.
	Create(ctx context.Context, b *bookmark.Bookmark) error

	// Get retrieves a bookmark by its unique identifier.
	// Returns ErrBookmarkNotFound if no bookmark exists with the given ID.
	Get(ctx context.Context, id string) (*bookmark.Bookmark, error)

	// GetByURL retrieves a bookmark by its URL.
	// Returns ErrBookmarkNotFound if no bookmark exists with the given URL.
	GetByURL(ctx context.Context, url string) (*bookmark.Bookmark, error)

	// GetAll returns every stored bookmark keyed by ID.
	// Returns an empty map when the store is empty.
	GetAll(ctx context.Context) (map[string]*bookmark.Bookmark, error)

	// List returns bookmarks matching the optional filter criteria.
	// Pass nil to retrieve all bookmarks.
	// Results are ordered by update time (most recent first).
	List(ctx context.Context, filter *bookmark.Filter) ([]*bookmark.Bookmark, error)

	// Update persists changes to an existing bookmark.
	// Returns ErrBookmarkNotFound if the bookmark does not exist.
	Update(ctx context.Context, b *bookmark.Bookmark) error

	// Delete removes a bookmark from storage.
	// Returns ErrBookmarkNotFound if the bookmark does not exist.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored bookmarks.
	Count(ctx context.Context) (int, error)
}
