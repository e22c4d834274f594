// Package bookmark defines the bookmark entity and its snapshot wire form.
package bookmark

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/markkeep/internal/domain/errors"
)

// Bookmark represents a single saved page in the local store.
type Bookmark struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a Bookmark with a generated ID and validated fields.
// Returns an error if validation fails:
//   - url is required and must be an absolute http(s) URL
//   - title is required
func New(rawURL, title string, tags ...string) (*Bookmark, error) {
	now := time.Now().UTC()
	b := &Bookmark{
		ID:        uuid.NewString(),
		URL:       strings.TrimSpace(rawURL),
		Title:     strings.TrimSpace(title),
		Tags:      NormalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the bookmark has a title and a well-formed http(s) URL.
func (b *Bookmark) Validate() error {
	if b.URL == "" {
		return errors.ErrBookmarkURLRequired
	}
	if b.Title == "" {
		return errors.ErrBookmarkTitleRequired
	}

	u, err := url.Parse(b.URL)
	if err != nil {
		return errors.ErrInvalidBookmarkURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ErrInvalidBookmarkURL
	}

	return nil
}

// Key returns the change-tracking key for the bookmark. Changes are keyed
// by URL so repeated edits to the same page collapse into the latest one.
func (b *Bookmark) Key() string {
	return b.URL
}

// Touch refreshes the update timestamp.
func (b *Bookmark) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// HasTag reports whether the bookmark carries the given tag.
// Comparison is case-insensitive.
func (b *Bookmark) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether the bookmark matches a free-text query against
// its URL, title, excerpt, or tags. An empty query matches everything.
func (b *Bookmark) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}

	if strings.Contains(strings.ToLower(b.URL), query) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Excerpt), query) {
		return true
	}
	for _, t := range b.Tags {
		if strings.Contains(t, query) {
			return true
		}
	}
	return false
}

// NormalizeTags trims, lowercases, de-duplicates, and sorts a tag list.
// Empty tags are dropped. A nil result means no tags.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}

	if len(normalized) == 0 {
		return nil
	}
	sort.Strings(normalized)
	return normalized
}

// Filter defines criteria for querying bookmarks.
type Filter struct {
	Tag   string // Filter by exact tag (empty for all)
	Query string // Free-text match against URL, title, excerpt, tags
	Limit int    // Maximum results (0 for all)
}
