// Package sync defines the domain model for local change tracking and
// synchronization passes.
package sync

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
)

// Change records one local mutation to a bookmark. The payload is a full
// snapshot of the bookmark at mutation time, with the tombstone flag set
// for deletions.
type Change struct {
	Key        string            `json:"key"`
	RecordedAt time.Time         `json:"recorded_at"`
	Payload    bookmark.Snapshot `json:"payload"`
}

// NewChange wraps a snapshot in a change keyed by the bookmark URL.
func NewChange(snap bookmark.Snapshot) Change {
	return Change{
		Key:        snap.URL,
		RecordedAt: time.Now().UTC(),
		Payload:    snap,
	}
}

// ChangeSet collects pending changes keyed by bookmark URL. Putting a
// change for a key that is already present replaces the earlier entry,
// so only the latest mutation per bookmark survives.
//
// ChangeSet is not safe for concurrent use; callers serialize access.
type ChangeSet struct {
	changes map[string]Change
}

// NewChangeSet creates an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{changes: make(map[string]Change)}
}

// Put inserts or replaces the change for its key.
func (s *ChangeSet) Put(c Change) {
	if s.changes == nil {
		s.changes = make(map[string]Change)
	}
	s.changes[c.Key] = c
}

// Get returns the change stored under key.
func (s *ChangeSet) Get(key string) (Change, bool) {
	c, ok := s.changes[key]
	return c, ok
}

// Merge copies every entry of other into s. Entries from other replace
// entries already present under the same key.
func (s *ChangeSet) Merge(other *ChangeSet) {
	if other == nil {
		return
	}
	for _, c := range other.changes {
		s.Put(c)
	}
}

// Len returns the number of distinct keys in the set.
func (s *ChangeSet) Len() int {
	return len(s.changes)
}

// IsEmpty reports whether the set holds no changes.
func (s *ChangeSet) IsEmpty() bool {
	return len(s.changes) == 0
}

// Keys returns the bookmark URLs present in the set, sorted.
func (s *ChangeSet) Keys() []string {
	keys := make([]string, 0, len(s.changes))
	for k := range s.changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the changes ordered by recording time, oldest first.
// Ties are broken by key so the order is deterministic.
func (s *ChangeSet) Values() []Change {
	values := make([]Change, 0, len(s.changes))
	for _, c := range s.changes {
		values = append(values, c)
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].RecordedAt.Equal(values[j].RecordedAt) {
			return values[i].Key < values[j].Key
		}
		return values[i].RecordedAt.Before(values[j].RecordedAt)
	})
	return values
}

// Payloads returns the snapshot payloads in the same order as Values.
func (s *ChangeSet) Payloads() []bookmark.Snapshot {
	values := s.Values()
	payloads := make([]bookmark.Snapshot, len(values))
	for i, c := range values {
		payloads[i] = c.Payload
	}
	return payloads
}

// Clone returns a copy of the set that shares no state with the original.
func (s *ChangeSet) Clone() *ChangeSet {
	clone := NewChangeSet()
	for k, c := range s.changes {
		clone.changes[k] = c
	}
	return clone
}

// Clear removes every change from the set.
func (s *ChangeSet) Clear() {
	s.changes = make(map[string]Change)
}

// MarshalJSON encodes the set as a JSON object keyed by bookmark URL.
// This is the shape persisted under the pending-changes state key.
func (s *ChangeSet) MarshalJSON() ([]byte, error) {
	if s.changes == nil {
		return json.Marshal(map[string]Change{})
	}
	return json.Marshal(s.changes)
}

// UnmarshalJSON decodes the JSON object form produced by MarshalJSON.
func (s *ChangeSet) UnmarshalJSON(data []byte) error {
	changes := make(map[string]Change)
	if err := json.Unmarshal(data, &changes); err != nil {
		return err
	}
	s.changes = changes
	return nil
}
