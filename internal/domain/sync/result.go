package sync

import "time"

// Strategy identifies which pass variant ran.
type Strategy string

const (
	// StrategyFull snapshots every stored bookmark, used when no pass has
	// ever completed on this device.
	StrategyFull Strategy = "full"
	// StrategyIncremental pushes only the accumulated pending changes.
	StrategyIncremental Strategy = "incremental"
)

// Outcome is the terminal status of a pass.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Result describes a successfully completed synchronization pass.
type Result struct {
	CompletedAt time.Time `json:"completed_at"`
	Outcome     Outcome   `json:"outcome"`
}

// NeverSynced is the sync version reported before any pass has completed
// on this device. Versions are wall-clock timestamps in milliseconds, so
// zero is never a legitimate completion time.
const NeverSynced int64 = 0
