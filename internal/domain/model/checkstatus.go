package model

import "time"

// CheckRun represents an individual check run from the GitHub Checks API.
type CheckRun struct {
	ID          int64       // GitHub check run ID.
	Name        string      // Check run name (e.g., "jscpd").
	HeadSHA     string      // Commit the check run is attached to.
	Status      CheckStatus // queued, in_progress, completed.
	Conclusion  Conclusion  // Empty unless Status is completed.
	Title       string      // Output title (empty unless completed by us).
	Summary     string      // Output summary.
	StartedAt   time.Time   // When the check run started.
	CompletedAt time.Time   // When the check run completed (zero if not yet completed).
}

// IsInProgress reports whether the run is still open for a completion update.
func (cr CheckRun) IsInProgress() bool {
	return cr.Status == CheckStatusInProgress
}

// NewCheckRun is the input for creating a check run in the in_progress state.
type NewCheckRun struct {
	Name      string
	HeadSHA   string
	StartedAt time.Time
}

// Completion is the terminal update applied to a check run. Name is sent
// back unchanged because the update endpoint requires it.
type Completion struct {
	Name        string
	Conclusion  Conclusion
	Title       string
	Summary     string
	CompletedAt time.Time // Stamped by the scheduler when the update is issued.
}
