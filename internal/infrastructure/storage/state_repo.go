package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jbctechsolutions/markkeep/internal/application/ports"
)

// Compile-time check that StateRepository implements StateStorePort.
var _ ports.StateStorePort = (*StateRepository)(nil)

// StateRepository implements StateStorePort using the app_state table.
// It backs the change ledger's pending set and the sync version cache.
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new state repository.
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get retrieves the value stored under key. The boolean reports presence;
// an absent key is not an error.
func (r *StateRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read state key %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any existing value.
func (r *StateRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("failed to write state key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the given keys. Removing an absent key is not an error.
func (r *StateRepository) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, key := range keys {
		placeholders[i] = "?"
		args[i] = key
	}

	query := "DELETE FROM app_state WHERE key IN (" + strings.Join(placeholders, ", ") + ")"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove state keys: %w", err)
	}
	return nil
}
