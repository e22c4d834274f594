package bookmark

import "time"

// Snapshot is the wire form of a bookmark carried in a pending change
// payload. It is a plain copy of the entity plus a tombstone flag, so a
// deletion travels through the change pipeline the same way an edit does.
type Snapshot struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// NewSnapshot copies b into its wire form, marking it as a tombstone when
// deleted is true. The tag slice is copied so later edits to the entity do
// not leak into an already-recorded change.
func NewSnapshot(b *Bookmark, deleted bool) Snapshot {
	var tags []string
	if len(b.Tags) > 0 {
		tags = make([]string, len(b.Tags))
		copy(tags, b.Tags)
	}

	return Snapshot{
		ID:        b.ID,
		URL:       b.URL,
		Title:     b.Title,
		Tags:      tags,
		Excerpt:   b.Excerpt,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Deleted:   deleted,
	}
}
