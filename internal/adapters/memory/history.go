package memory

import (
	"context"
	"sync"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
)

// History implements SyncHistoryPort with an in-memory slice.
type History struct {
	mu     sync.RWMutex
	passes []domainSync.PassRecord
}

var _ ports.SyncHistoryPort = (*History)(nil)

// NewHistory creates an empty in-memory sync history.
func NewHistory() *History {
	return &History{}
}

// SavePass appends a pass record to the history. The record is copied so
// later edits by the caller do not leak into the log.
func (h *History) SavePass(ctx context.Context, record *domainSync.PassRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.passes = append(h.passes, *record)
	return nil
}

// ListPasses returns recorded passes newest first. A limit of zero
// returns everything.
func (h *History) ListPasses(ctx context.Context, limit int) ([]*domainSync.PassRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*domainSync.PassRecord, len(h.passes))
	for i := range h.passes {
		rec := h.passes[len(h.passes)-1-i]
		out[i] = &rec
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LastPass returns the most recent pass record, or nil when the history
// is empty.
func (h *History) LastPass(ctx context.Context) (*domainSync.PassRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.passes) == 0 {
		return nil, nil
	}
	rec := h.passes[len(h.passes)-1]
	return &rec, nil
}

// Purge removes all pass records and reports how many were removed.
func (h *History) Purge(ctx context.Context) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.passes)
	h.passes = nil
	return n, nil
}
