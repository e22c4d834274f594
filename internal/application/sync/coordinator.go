// Package sync coordinates synchronization passes between the local bookmark
// store and the remote transport. Passes are single-flight: admission is an
// atomic idle-to-syncing transition on the shared state, and every exit path
// drains the change ledger's overflow buffer on the way back to idle.
package sync

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/markkeep/internal/application/ledger"
	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	domainErrors "github.com/jbctechsolutions/markkeep/internal/domain/errors"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/logging"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/tracing"
)

// DefaultBatchSize is the declared size for chunked transmission of large
// change sets. No chunking logic consumes it yet; it is threaded through so
// a future transport can pick it up without a config change.
const DefaultBatchSize = 50

// Coordinator runs synchronization passes. It decides between a full snapshot
// push and an incremental pending-change push based on the persisted sync
// version, guards against overlapping passes, and keeps the version and the
// pass log up to date.
type Coordinator struct {
	store        ports.StateStorePort
	bookmarks    ports.BookmarkStoragePort
	connectivity ports.ConnectivityPort
	transport    ports.TransportPort
	history      ports.SyncHistoryPort
	ledger       *ledger.Ledger
	state        *domainSync.State
	logger       *logging.Logger
	tracer       *tracing.Tracer
	batchSize    int
}

// Config carries the coordinator's dependencies.
type Config struct {
	Store        ports.StateStorePort
	Bookmarks    ports.BookmarkStoragePort
	Connectivity ports.ConnectivityPort
	Transport    ports.TransportPort
	History      ports.SyncHistoryPort // optional; passes are not logged when nil
	Ledger       *ledger.Ledger
	State        *domainSync.State
	Logger       *logging.Logger
	Tracer       *tracing.Tracer
	BatchSize    int
}

// NewCoordinator creates a Coordinator from the given dependencies. The state
// handle must be the same one the ledger was built with, otherwise buffered
// changes and the single-flight guard drift apart. Nil logger and tracer fall
// back to the globals; a non-positive batch size falls back to
// DefaultBatchSize.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracing.Default()
	}
	if cfg.State == nil {
		cfg.State = &domainSync.State{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Coordinator{
		store:        cfg.Store,
		bookmarks:    cfg.Bookmarks,
		connectivity: cfg.Connectivity,
		transport:    cfg.Transport,
		history:      cfg.History,
		ledger:       cfg.Ledger,
		state:        cfg.State,
		logger:       cfg.Logger,
		tracer:       cfg.Tracer,
		batchSize:    cfg.BatchSize,
	}
}

// Syncing reports whether a pass is currently running.
func (c *Coordinator) Syncing() bool {
	return c.state.Active()
}

// BatchSize returns the configured transmission batch size.
func (c *Coordinator) BatchSize() int {
	return c.batchSize
}

// CurrentVersion returns the persisted sync version. Before any pass has
// completed on this device it returns NeverSynced.
func (c *Coordinator) CurrentVersion(ctx context.Context) (int64, error) {
	raw, ok, err := c.store.Get(ctx, ports.StateKeyLastSyncVersion)
	if err != nil {
		return 0, domainErrors.NewStorageError("failed to read sync version", err)
	}
	if !ok || raw == "" {
		return domainSync.NeverSynced, nil
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domainErrors.NewStorageError("corrupt sync version in state store", err)
	}
	return version, nil
}

// StartSync runs one synchronization pass, choosing the strategy from the
// persisted version: a device that has never synced pushes a full snapshot,
// everything after that pushes only the pending changes.
func (c *Coordinator) StartSync(ctx context.Context) (*domainSync.Result, error) {
	version, err := c.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == domainSync.NeverSynced {
		return c.SyncAllBookmarks(ctx)
	}
	return c.SyncPendingChanges(ctx)
}

// SyncAllBookmarks pushes a snapshot of every stored bookmark. Used for the
// first pass on a device. The durable pending set is not cleared here; only
// an incremental pass clears it.
func (c *Coordinator) SyncAllBookmarks(ctx context.Context) (*domainSync.Result, error) {
	return c.run(ctx, domainSync.StrategyFull, c.pushAllBookmarks)
}

// SyncPendingChanges pushes the accumulated pending changes and clears the
// durable set on success. The overflow buffer is never cleared here; changes
// recorded during the pass land there and are flushed on exit.
func (c *Coordinator) SyncPendingChanges(ctx context.Context) (*domainSync.Result, error) {
	return c.run(ctx, domainSync.StrategyIncremental, c.pushPendingChanges)
}

// Cleanup clears all change-tracking state and forces the coordinator back to
// idle. Meant for teardown and recovery paths, not the pass lifecycle.
func (c *Coordinator) Cleanup(ctx context.Context) error {
	err := c.ledger.Reset(ctx)
	c.state.End()
	return err
}

// ResetVersionCache forgets the persisted sync version, so the next pass runs
// the full-snapshot strategy again.
func (c *Coordinator) ResetVersionCache(ctx context.Context) error {
	if err := c.store.Remove(ctx, ports.StateKeyLastSyncVersion); err != nil {
		return domainErrors.NewStorageError("failed to reset sync version", err)
	}
	return nil
}

// pushFunc performs the strategy-specific transmission and reports how many
// snapshots it shipped.
type pushFunc func(ctx context.Context) (int, error)

// run wraps a strategy with the shared pass lifecycle: single-flight
// admission, connectivity check, version advance, pass logging, and the
// guaranteed buffer drain on exit.
func (c *Coordinator) run(ctx context.Context, strategy domainSync.Strategy, push pushFunc) (*domainSync.Result, error) {
	if !c.state.Begin() {
		logging.LogSyncRejected(ctx, c.logger)
		return nil, domainErrors.ErrSyncInProgress
	}

	passID := uuid.NewString()
	ctx = logging.WithSyncPassID(ctx, passID)
	ctx = logging.WithStrategy(ctx, string(strategy))
	started := time.Now().UTC()

	ctx, span := c.tracer.StartSyncSpan(ctx, passID, string(strategy))

	// From here every exit drains the overflow buffer and returns the state
	// to idle, success or not.
	defer func() {
		if err := c.ledger.EndPass(ctx); err != nil {
			c.logger.ErrorContext(ctx, "overflow flush on pass exit failed", "error", err.Error())
		}
	}()

	versionBefore, err := c.CurrentVersion(ctx)
	if err != nil {
		return nil, c.failPass(ctx, span, strategy, passID, started, 0, err)
	}

	logging.LogSyncStart(ctx, c.logger, string(strategy), versionBefore)

	if !c.connectivity.IsOnline() {
		return nil, c.failPass(ctx, span, strategy, passID, started, 0, domainErrors.ErrNetworkUnavailable)
	}

	changes, err := push(ctx)
	if err != nil {
		return nil, c.failPass(ctx, span, strategy, passID, started, changes, err)
	}

	version := c.nextVersion(versionBefore)
	if err := c.writeVersion(ctx, version); err != nil {
		return nil, c.failPass(ctx, span, strategy, passID, started, changes, err)
	}

	if strategy == domainSync.StrategyIncremental {
		if err := c.ledger.Discard(ctx); err != nil {
			return nil, c.failPass(ctx, span, strategy, passID, started, changes, err)
		}
	}

	completed := time.Now().UTC()
	span.SetChangeCount(changes)
	span.SetVersions(versionBefore, version)
	span.SetOverflow(c.ledger.OverflowCount())
	span.End()
	logging.LogSyncComplete(ctx, c.logger, string(strategy), changes, completed.Sub(started), version)
	c.recordPass(ctx, &domainSync.PassRecord{
		ID:          passID,
		Strategy:    strategy,
		Outcome:     domainSync.OutcomeSuccess,
		StartedAt:   started,
		CompletedAt: completed,
		Changes:     changes,
		Version:     version,
	})

	return &domainSync.Result{CompletedAt: completed, Outcome: domainSync.OutcomeSuccess}, nil
}

// pushAllBookmarks snapshots the whole store and hands it to the transport,
// ordered by URL so batches are stable.
func (c *Coordinator) pushAllBookmarks(ctx context.Context) (int, error) {
	all, err := c.bookmarks.GetAll(ctx)
	if err != nil {
		return 0, domainErrors.NewStorageError("failed to read bookmark collection", err)
	}

	snapshots := make([]bookmark.Snapshot, 0, len(all))
	for _, b := range all {
		snapshots = append(snapshots, bookmark.NewSnapshot(b, false))
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].URL < snapshots[j].URL })

	if err := c.transport.Push(ctx, snapshots); err != nil {
		return 0, fmt.Errorf("full snapshot push failed: %w", err)
	}
	return len(snapshots), nil
}

// pushPendingChanges ships the payloads of the durable pending set. The set
// itself is cleared by the caller after the version advance succeeds.
func (c *Coordinator) pushPendingChanges(ctx context.Context) (int, error) {
	pending, err := c.ledger.PendingChanges(ctx)
	if err != nil {
		return 0, err
	}

	payloads := pending.Payloads()
	if err := c.transport.Push(ctx, payloads); err != nil {
		return 0, fmt.Errorf("pending change push failed: %w", err)
	}
	return len(payloads), nil
}

// nextVersion returns the wall clock in milliseconds, bumped past the
// previous version when the clock has not moved or went backwards.
func (c *Coordinator) nextVersion(before int64) int64 {
	version := time.Now().UnixMilli()
	if version <= before {
		version = before + 1
	}
	return version
}

func (c *Coordinator) writeVersion(ctx context.Context, version int64) error {
	if err := c.store.Set(ctx, ports.StateKeyLastSyncVersion, strconv.FormatInt(version, 10)); err != nil {
		return domainErrors.NewStorageError("failed to persist sync version", err)
	}
	return nil
}

// failPass finishes a pass that cannot complete: logs the failure, closes the
// span, records the pass, and returns the error for the caller to propagate.
func (c *Coordinator) failPass(ctx context.Context, span *tracing.SyncSpan, strategy domainSync.Strategy, passID string, started time.Time, changes int, err error) error {
	completed := time.Now().UTC()
	logging.LogSyncFailed(ctx, c.logger, string(strategy), err, completed.Sub(started))
	span.SetOverflow(c.ledger.OverflowCount())
	span.EndWithError(err)
	c.recordPass(ctx, &domainSync.PassRecord{
		ID:          passID,
		Strategy:    strategy,
		Outcome:     domainSync.OutcomeFailed,
		StartedAt:   started,
		CompletedAt: completed,
		Changes:     changes,
		Reason:      string(domainErrors.CodeOf(err)),
	})
	return err
}

// recordPass writes the pass to the history log. Logging failures are
// reported but never fail the pass.
func (c *Coordinator) recordPass(ctx context.Context, record *domainSync.PassRecord) {
	if c.history == nil {
		return
	}
	if err := c.history.SavePass(ctx, record); err != nil {
		c.logger.WarnContext(ctx, "failed to record sync pass", "error", err.Error())
	}
}
