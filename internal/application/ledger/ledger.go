// Package ledger tracks local bookmark mutations until a synchronization
// pass ships them. Changes live in a durable pending set persisted through
// the state store; while a pass is running, new changes land in a transient
// overflow buffer instead so the in-flight snapshot stays stable.
package ledger

import (
	"context"
	"encoding/json"
	stdsync "sync"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	"github.com/jbctechsolutions/markkeep/internal/domain/errors"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/logging"
)

// Ledger records bookmark changes and keeps the durable pending set and the
// transient overflow buffer consistent. All methods are safe for concurrent
// use; a single mutex serializes access to both sets.
type Ledger struct {
	mu       stdsync.Mutex
	store    ports.StateStorePort
	state    *domainSync.State
	overflow *domainSync.ChangeSet
	logger   *logging.Logger
}

// New creates a Ledger backed by the given state store. The state handle is
// shared with the coordinator so the ledger can tell whether a pass is
// currently running. A nil logger falls back to the global one.
func New(store ports.StateStorePort, state *domainSync.State, logger *logging.Logger) *Ledger {
	if state == nil {
		state = &domainSync.State{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ledger{
		store:    store,
		state:    state,
		overflow: domainSync.NewChangeSet(),
		logger:   logger,
	}
}

// Record captures a local mutation to one or more bookmarks. When deleted is
// true the payloads carry tombstones. While a pass is running the changes go
// to the overflow buffer; otherwise they are merged into the durable set.
// Repeated changes to the same URL collapse into the latest one.
func (l *Ledger) Record(ctx context.Context, deleted bool, bookmarks ...*bookmark.Bookmark) error {
	if len(bookmarks) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.Active() {
		for _, b := range bookmarks {
			change := domainSync.NewChange(bookmark.NewSnapshot(b, deleted))
			l.overflow.Put(change)
			logging.LogChangeRecorded(ctx, l.logger, change.Key, deleted, true)
		}
		return nil
	}

	pending, err := l.loadPendingLocked(ctx)
	if err != nil {
		return err
	}
	// A non-empty buffer while idle means a previous pass exit could not
	// persist its flush. Those entries predate this call, so fold them in
	// before the new changes take their keys.
	pending.Merge(l.overflow)
	for _, b := range bookmarks {
		change := domainSync.NewChange(bookmark.NewSnapshot(b, deleted))
		pending.Put(change)
		logging.LogChangeRecorded(ctx, l.logger, change.Key, deleted, false)
	}
	if err := l.persistPendingLocked(ctx, pending); err != nil {
		return err
	}
	l.overflow.Clear()
	return nil
}

// PendingChanges returns the durable pending set.
func (l *Ledger) PendingChanges(ctx context.Context) (*domainSync.ChangeSet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadPendingLocked(ctx)
}

// ChangeCount reports how many changes are waiting in the durable set.
func (l *Ledger) ChangeCount(ctx context.Context) (int, error) {
	pending, err := l.PendingChanges(ctx)
	if err != nil {
		return 0, err
	}
	return pending.Len(), nil
}

// OverflowCount reports how many changes are waiting in the overflow buffer.
func (l *Ledger) OverflowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.overflow.Len()
}

// FlushOverflow writes the overflow buffer into the durable pending set.
// When the buffer is empty the store is not touched. Buffered contents
// replace the durable set wholesale rather than merging into it: anything
// durable before the pass started was already shipped or discarded by the
// pass itself. The buffer is cleared only after the replacement has been
// persisted, so a storage failure keeps the buffered changes for the next
// flush.
func (l *Ledger) FlushOverflow(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushOverflowLocked(ctx)
}

// EndPass flushes the overflow buffer and returns the shared sync state to
// idle as a single step. Both happen under the ledger lock, so a concurrent
// Record either lands in the buffer before the flush or observes the idle
// state and writes durably; no change can fall between the two transitions.
// The state goes idle even when the flush fails.
func (l *Ledger) EndPass(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.flushOverflowLocked(ctx)
	l.state.End()
	return err
}

func (l *Ledger) flushOverflowLocked(ctx context.Context) error {
	if l.overflow.IsEmpty() {
		return nil
	}

	if err := l.persistPendingLocked(ctx, l.overflow); err != nil {
		return err
	}

	flushed := l.overflow.Len()
	l.overflow.Clear()
	logging.LogOverflowFlushed(ctx, l.logger, flushed)
	return nil
}

// Discard removes the durable pending set. The overflow buffer is left
// alone so changes recorded during a pass survive.
func (l *Ledger) Discard(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.discardLocked(ctx)
}

// Reset clears both the overflow buffer and the durable pending set.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.overflow.Clear()
	return l.discardLocked(ctx)
}

func (l *Ledger) discardLocked(ctx context.Context) error {
	if err := l.store.Remove(ctx, ports.StateKeyPendingChanges); err != nil {
		l.logger.ErrorContext(ctx, "failed to discard pending changes", "error", err.Error())
		return errors.NewStorageError("failed to discard pending changes", err)
	}
	return nil
}

func (l *Ledger) loadPendingLocked(ctx context.Context) (*domainSync.ChangeSet, error) {
	raw, ok, err := l.store.Get(ctx, ports.StateKeyPendingChanges)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to read pending changes", "error", err.Error())
		return nil, errors.NewStorageError("failed to read pending changes", err)
	}

	pending := domainSync.NewChangeSet()
	if !ok || raw == "" {
		return pending, nil
	}
	if err := json.Unmarshal([]byte(raw), pending); err != nil {
		l.logger.ErrorContext(ctx, "failed to decode pending changes", "error", err.Error())
		return nil, errors.NewStorageError("failed to decode pending changes", err)
	}
	return pending, nil
}

func (l *Ledger) persistPendingLocked(ctx context.Context, pending *domainSync.ChangeSet) error {
	data, err := json.Marshal(pending)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to encode pending changes", "error", err.Error())
		return errors.NewStorageError("failed to encode pending changes", err)
	}
	if err := l.store.Set(ctx, ports.StateKeyPendingChanges, string(data)); err != nil {
		l.logger.ErrorContext(ctx, "failed to persist pending changes", "error", err.Error())
		return errors.NewStorageError("failed to persist pending changes", err)
	}
	return nil
}
