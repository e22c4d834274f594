package ports

import (
	"context"

	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
)

// -----------------------------------------------------------------------------
// Connectivity Port
// -----------------------------------------------------------------------------

// ConnectivityPort reports whether the device currently has network access.
// Synchronization uses this as a pass precondition, not a guarantee that a
// later transmission would succeed.
type ConnectivityPort interface {
	// IsOnline reports current network availability.
	// Implementations must return quickly and never block on slow probes.
	IsOnline() bool
}

// -----------------------------------------------------------------------------
// Transport Port
// -----------------------------------------------------------------------------

// TransportPort is the hook for shipping bookmark snapshots to a remote sync
// service. The current implementations accept payloads without transmitting
// anything; the interface fixes the seam where a real backend plugs in.
type TransportPort interface {
	// Push hands a batch of snapshots to the transport.
	// A full pass pushes a snapshot of every stored bookmark; an incremental
	// pass pushes only the pending change payloads.
	Push(ctx context.Context, snapshots []bookmark.Snapshot) error
}

// -----------------------------------------------------------------------------
// Sync History Port
// -----------------------------------------------------------------------------

// SyncHistoryPort defines the interface for the persisted log of
// synchronization passes.
type SyncHistoryPort interface {
	// SavePass appends a pass record to the log.
	SavePass(ctx context.Context, record *domainSync.PassRecord) error

	// ListPasses returns the most recent passes, newest first.
	// A limit of 0 returns all records.
	ListPasses(ctx context.Context, limit int) ([]*domainSync.PassRecord, error)

	// LastPass returns the most recent pass record.
	// Returns nil (and no error) when the log is empty.
	LastPass(ctx context.Context) (*domainSync.PassRecord, error)

	// Purge removes all pass records and returns the number removed.
	Purge(ctx context.Context) (int, error)
}
