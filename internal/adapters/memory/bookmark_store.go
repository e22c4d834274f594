package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	"github.com/jbctechsolutions/markkeep/internal/domain/errors"
)

// BookmarkStore implements BookmarkStoragePort with in-memory maps.
// Bookmarks are cloned on both write and read so callers never share
// state with the store.
type BookmarkStore struct {
	mu    sync.RWMutex
	byID  map[string]*bookmark.Bookmark
	byURL map[string]string
}

var _ ports.BookmarkStoragePort = (*BookmarkStore)(nil)

// NewBookmarkStore creates an empty in-memory bookmark store.
func NewBookmarkStore() *BookmarkStore {
	return &BookmarkStore{
		byID:  make(map[string]*bookmark.Bookmark),
		byURL: make(map[string]string),
	}
}

// Create stores a new bookmark. Returns ErrDuplicateBookmark when a
// bookmark with the same URL already exists.
func (s *BookmarkStore) Create(ctx context.Context, b *bookmark.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byURL[b.URL]; exists {
		return errors.ErrDuplicateBookmark
	}

	clone := cloneBookmark(b)
	s.byID[clone.ID] = clone
	s.byURL[clone.URL] = clone.ID
	return nil
}

// Get retrieves a bookmark by ID.
func (s *BookmarkStore) Get(ctx context.Context, id string) (*bookmark.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, errors.ErrBookmarkNotFound
	}
	return cloneBookmark(b), nil
}

// GetByURL retrieves a bookmark by its URL.
func (s *BookmarkStore) GetByURL(ctx context.Context, rawURL string) (*bookmark.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byURL[rawURL]
	if !ok {
		return nil, errors.ErrBookmarkNotFound
	}
	return cloneBookmark(s.byID[id]), nil
}

// GetAll returns every stored bookmark keyed by ID.
func (s *BookmarkStore) GetAll(ctx context.Context) (map[string]*bookmark.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string]*bookmark.Bookmark, len(s.byID))
	for id, b := range s.byID {
		all[id] = cloneBookmark(b)
	}
	return all, nil
}

// List returns bookmarks matching the filter, most recently updated first.
// A nil filter returns everything.
func (s *BookmarkStore) List(ctx context.Context, filter *bookmark.Filter) ([]*bookmark.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*bookmark.Bookmark, 0, len(s.byID))
	for _, b := range s.byID {
		if filter != nil {
			if filter.Tag != "" && !b.HasTag(filter.Tag) {
				continue
			}
			if !b.Matches(filter.Query) {
				continue
			}
		}
		matched = append(matched, cloneBookmark(b))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].URL < matched[j].URL
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if filter != nil && filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Update replaces a stored bookmark. Returns ErrBookmarkNotFound when the
// ID is unknown and ErrDuplicateBookmark when the new URL collides with
// another bookmark.
func (s *BookmarkStore) Update(ctx context.Context, b *bookmark.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[b.ID]
	if !ok {
		return errors.ErrBookmarkNotFound
	}

	if current.URL != b.URL {
		if otherID, exists := s.byURL[b.URL]; exists && otherID != b.ID {
			return errors.ErrDuplicateBookmark
		}
		delete(s.byURL, current.URL)
		s.byURL[b.URL] = b.ID
	}

	s.byID[b.ID] = cloneBookmark(b)
	return nil
}

// Delete removes a bookmark by ID.
func (s *BookmarkStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return errors.ErrBookmarkNotFound
	}

	delete(s.byURL, b.URL)
	delete(s.byID, id)
	return nil
}

// Count reports the number of stored bookmarks.
func (s *BookmarkStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func cloneBookmark(b *bookmark.Bookmark) *bookmark.Bookmark {
	clone := *b
	if b.Tags != nil {
		clone.Tags = append([]string(nil), b.Tags...)
	}
	return &clone
}
