// Package feature contains the pure business logic for feature lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package feature

import (
	"fmt"
	"time"
)

// Status represents the possible states of a feature.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// ParseStatus validates a feature status name.
func ParseStatus(name string) (Status, error) {
	switch Status(name) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return Status(name), nil
	}
	return "", fmt.Errorf("invalid feature status %q (valid: pending, in_progress, completed, skipped)", name)
}

// IsTerminal reports whether the status ends the feature's lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// InitialStatus returns the initial status for a new feature.
func InitialStatus() Status {
	return StatusPending
}

// TransitionResult contains the result of a status transition: the new
// status and the timestamp side effects that come with it.
type TransitionResult struct {
	NewStatus   Status
	StartedAt   *time.Time // set when work begins and no start was recorded
	CompletedAt *time.Time // set when transitioning to completed
}

// ApplyTransition applies a status transition and returns the result.
// This is a pure function that captures two business rules:
//   - moving to in_progress starts the clock if it was never started
//   - a completed feature always has a start time, so completing a
//     feature that never started backfills StartedAt as well
//
// The caller passes the current time to enable testing.
func ApplyTransition(newStatus Status, alreadyStarted bool, now time.Time) TransitionResult {
	result := TransitionResult{NewStatus: newStatus}

	switch newStatus {
	case StatusInProgress:
		if !alreadyStarted {
			result.StartedAt = &now
		}
	case StatusCompleted:
		if !alreadyStarted {
			result.StartedAt = &now
		}
		result.CompletedAt = &now
	}

	return result
}

// GenerateFeatureID generates a feature ID from the current max number.
// The format is FEAT-XXX where XXX is a zero-padded 3-digit number.
func GenerateFeatureID(currentMax int) string {
	return fmt.Sprintf("FEAT-%03d", currentMax+1)
}

// ParseFeatureNumber extracts the numeric portion from a feature ID.
// Returns -1 if the ID format is invalid.
func ParseFeatureNumber(id string) int {
	var num int
	if _, err := fmt.Sscanf(id, "FEAT-%d", &num); err != nil {
		return -1
	}
	return num
}
