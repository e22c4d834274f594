package sync

import "time"

// PassRecord is the persisted log entry for one synchronization pass,
// successful or not. Failed passes keep a classification in Reason.
type PassRecord struct {
	ID          string    `json:"id"`
	Strategy    Strategy  `json:"strategy"`
	Outcome     Outcome   `json:"outcome"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Changes     int       `json:"changes"`
	Version     int64     `json:"version"`
	Reason      string    `json:"reason,omitempty"`
}

// Duration returns how long the pass took.
func (r *PassRecord) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the pass completed successfully.
func (r *PassRecord) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}
