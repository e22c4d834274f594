// Package ports defines the application layer port interfaces following hexagonal architecture.
// Ports are abstractions that allow the application core to interact with external systems
// (adapters) without knowing their implementation details.
package ports

import "context"

// -----------------------------------------------------------------------------
// State Store Port
// -----------------------------------------------------------------------------

// Well-known state store keys.
const (
	// StateKeyPendingChanges holds the serialized pending change set.
	StateKeyPendingChanges = "pendingChanges"

	// StateKeyLastSyncVersion holds the last completed sync version as a
	// decimal millisecond timestamp.
	StateKeyLastSyncVersion = "lastSyncVersion"
)

// StateStorePort defines the interface for the durable key-value store that
// backs change tracking and sync metadata. Values are opaque strings; callers
// handle their own serialization.
//
// Implementations might use SQLite or an in-memory map for tests.
// All methods accept a context.Context for cancellation and timeout support.
type StateStorePort interface {
	// Get retrieves the value stored under key.
	// The boolean return is false when the key is absent; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the given keys. Removing an absent key is not an error.
	Remove(ctx context.Context, keys ...string) error
}
