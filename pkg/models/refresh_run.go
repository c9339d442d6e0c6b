package models

import (
	"time"

	"github.com/google/uuid"
)

// Refresh run statuses.
const (
	RefreshStatusSucceeded = "succeeded"
	RefreshStatusFailed    = "failed"
)

// RefreshRun records one application of the view definitions.
type RefreshRun struct {
	ID           uuid.UUID
	StartedAt    time.Time
	FinishedAt   time.Time
	ViewsApplied int
	Status       string
	// Error holds the failure message for failed runs, empty otherwise.
	Error string
}

// Duration returns how long the run took.
func (r *RefreshRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
