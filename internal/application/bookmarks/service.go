// Package bookmarks provides the application service for the local bookmark
// collection. Every mutation feeds the change ledger, so anything done here
// is picked up by the next synchronization pass.
package bookmarks

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jbctechsolutions/markkeep/internal/application/ledger"
	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	domainErrors "github.com/jbctechsolutions/markkeep/internal/domain/errors"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/logging"
)

// Service manages bookmarks and records their changes.
type Service struct {
	store  ports.BookmarkStoragePort
	ledger *ledger.Ledger
	logger *logging.Logger
}

// NewService creates a bookmark service. A nil logger falls back to the
// global one.
func NewService(store ports.BookmarkStoragePort, led *ledger.Ledger, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:  store,
		ledger: led,
		logger: logger,
	}
}

// Add creates a new bookmark and records the change.
func (s *Service) Add(ctx context.Context, rawURL, title string, tags []string, excerpt string) (*bookmark.Bookmark, error) {
	b, err := bookmark.New(rawURL, title, tags...)
	if err != nil {
		return nil, err
	}
	b.Excerpt = excerpt

	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}
	if err := s.ledger.Record(ctx, false, b); err != nil {
		return nil, fmt.Errorf("bookmark saved but change tracking failed: %w", err)
	}

	s.logger.InfoContext(ctx, "bookmark added", "url", b.URL, "id", b.ID)
	return b, nil
}

// Find resolves a bookmark by reference: an absolute URL looks up by URL,
// anything else is treated as an ID.
func (s *Service) Find(ctx context.Context, ref string) (*bookmark.Bookmark, error) {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return s.store.GetByURL(ctx, ref)
	}
	return s.store.Get(ctx, ref)
}

// Get retrieves a bookmark by ID.
func (s *Service) Get(ctx context.Context, id string) (*bookmark.Bookmark, error) {
	return s.store.Get(ctx, id)
}

// UpdateOptions describes which bookmark fields to change. Nil fields keep
// their current value; a non-nil Tags slice replaces the tag set.
type UpdateOptions struct {
	Title   *string
	Excerpt *string
	Tags    []string
}

// Update applies the given changes to the bookmark identified by ref and
// records the change.
func (s *Service) Update(ctx context.Context, ref string, opts UpdateOptions) (*bookmark.Bookmark, error) {
	b, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}

	if opts.Title != nil {
		b.Title = *opts.Title
	}
	if opts.Excerpt != nil {
		b.Excerpt = *opts.Excerpt
	}
	if opts.Tags != nil {
		b.Tags = bookmark.NormalizeTags(opts.Tags)
	}
	b.Touch()

	if err := b.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update bookmark: %w", err)
	}
	if err := s.ledger.Record(ctx, false, b); err != nil {
		return nil, fmt.Errorf("bookmark updated but change tracking failed: %w", err)
	}

	s.logger.InfoContext(ctx, "bookmark updated", "url", b.URL, "id", b.ID)
	return b, nil
}

// Remove deletes the bookmark identified by ref and records a tombstone.
// The removed bookmark is returned so callers can report what went away.
func (s *Service) Remove(ctx context.Context, ref string) (*bookmark.Bookmark, error) {
	b, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, b.ID); err != nil {
		return nil, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if err := s.ledger.Record(ctx, true, b); err != nil {
		return nil, fmt.Errorf("bookmark removed but change tracking failed: %w", err)
	}

	s.logger.InfoContext(ctx, "bookmark removed", "url", b.URL, "id", b.ID)
	return b, nil
}

// List returns bookmarks matching the filter, most recently updated first.
func (s *Service) List(ctx context.Context, filter *bookmark.Filter) ([]*bookmark.Bookmark, error) {
	return s.store.List(ctx, filter)
}

// Search returns bookmarks whose URL, title, excerpt, or tags match the
// query.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*bookmark.Bookmark, error) {
	return s.store.List(ctx, &bookmark.Filter{Query: query, Limit: limit})
}

// Count returns the number of stored bookmarks.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// ImportSummary reports what an import run did.
type ImportSummary struct {
	Created int
	Updated int
}

// Import upserts a batch of bookmarks by URL and records the whole batch as
// one ledger write. Existing bookmarks keep their ID and creation time;
// title is always taken from the incoming entry, excerpt and tags only when
// the entry provides them.
func (s *Service) Import(ctx context.Context, incoming []*bookmark.Bookmark) (*ImportSummary, error) {
	summary := &ImportSummary{}
	if len(incoming) == 0 {
		return summary, nil
	}

	changed := make([]*bookmark.Bookmark, 0, len(incoming))
	for _, in := range incoming {
		existing, err := s.store.GetByURL(ctx, in.URL)
		switch {
		case err == nil:
			existing.Title = in.Title
			if in.Excerpt != "" {
				existing.Excerpt = in.Excerpt
			}
			if len(in.Tags) > 0 {
				existing.Tags = bookmark.NormalizeTags(in.Tags)
			}
			existing.Touch()
			if err := s.store.Update(ctx, existing); err != nil {
				return summary, fmt.Errorf("failed to update %s: %w", in.URL, err)
			}
			changed = append(changed, existing)
			summary.Updated++
		case domainErrors.Is(err, domainErrors.ErrBookmarkNotFound):
			if err := s.store.Create(ctx, in); err != nil {
				return summary, fmt.Errorf("failed to create %s: %w", in.URL, err)
			}
			changed = append(changed, in)
			summary.Created++
		default:
			return summary, fmt.Errorf("failed to look up %s: %w", in.URL, err)
		}
	}

	if err := s.ledger.Record(ctx, false, changed...); err != nil {
		return summary, fmt.Errorf("import applied but change tracking failed: %w", err)
	}

	s.logger.InfoContext(ctx, "bookmarks imported",
		"created", summary.Created,
		"updated", summary.Updated,
	)
	return summary, nil
}
