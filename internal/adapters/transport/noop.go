// Package transport holds implementations of the snapshot transport seam.
package transport

import (
	"context"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	"github.com/jbctechsolutions/markkeep/internal/domain/bookmark"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/logging"
)

// Compile-time check that Noop implements TransportPort.
var _ ports.TransportPort = (*Noop)(nil)

// Noop accepts snapshot batches without transmitting anything. It marks the
// seam where a real sync backend plugs in; sync passes run the full protocol
// against it.
type Noop struct {
	logger *logging.Logger
}

// NewNoop creates a no-op transport.
func NewNoop(logger *logging.Logger) *Noop {
	if logger == nil {
		logger = logging.Default()
	}
	return &Noop{logger: logger}
}

// Push accepts the batch and drops it.
func (n *Noop) Push(ctx context.Context, snapshots []bookmark.Snapshot) error {
	n.logger.DebugContext(ctx, "transport accepted batch", "snapshots", len(snapshots))
	return nil
}
