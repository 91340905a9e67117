// Package session contains the pure business logic for work sessions.
// This is part of the Functional Core - no I/O, only pure functions.
package session

import (
	"fmt"
	"time"
)

// Status represents the possible states of a work session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ParseStatus validates a session status name.
func ParseStatus(name string) (Status, error) {
	switch Status(name) {
	case StatusRunning, StatusPaused, StatusCompleted, StatusFailed:
		return Status(name), nil
	}
	return "", fmt.Errorf("invalid session status %q (valid: running, paused, completed, failed)", name)
}

// IsTerminal reports whether the session can no longer be resumed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// InitialStatus returns the initial status for a new session.
func InitialStatus() Status {
	return StatusRunning
}

// EndResult contains the result of ending a session.
type EndResult struct {
	NewStatus Status
	EndedAt   time.Time
}

// End validates a terminal transition and stamps the end time.
// Only completed and failed end a session; pausing keeps it resumable
// and goes through a plain status update instead.
func End(status Status, now time.Time) (EndResult, error) {
	if !status.IsTerminal() {
		return EndResult{}, fmt.Errorf("cannot end session with non-terminal status %q", status)
	}
	return EndResult{NewStatus: status, EndedAt: now}, nil
}
