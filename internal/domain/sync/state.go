package sync

import "sync/atomic"

// State tracks whether a synchronization pass is currently running.
// The zero value is idle and ready to use.
type State struct {
	syncing atomic.Bool
}

// Begin attempts the idle-to-syncing transition. It returns false when a
// pass is already running. The check and the transition are one atomic
// operation, so two concurrent callers can never both succeed.
func (s *State) Begin() bool {
	return s.syncing.CompareAndSwap(false, true)
}

// End returns the state to idle. Safe to call when already idle.
func (s *State) End() {
	s.syncing.Store(false)
}

// Active reports whether a pass is currently running.
func (s *State) Active() bool {
	return s.syncing.Load()
}
