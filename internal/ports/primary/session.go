package primary

import "context"

// SessionService defines the primary port for work session management.
type SessionService interface {
	// ResumeOrStart resumes the running session if one exists, otherwise
	// starts a new one. The response says which happened.
	ResumeOrStart(ctx context.Context) (*SessionResponse, error)

	// Current returns the running session, or nil when none is running.
	Current(ctx context.Context) (*Session, error)

	// ClaimFeature exclusively claims a feature for a session. Returns
	// false without mutating anything when another session owns it.
	ClaimFeature(ctx context.Context, sessionID, featureID string) (bool, error)

	// ReleaseFeature releases a claim. Returns false when the claim was
	// not held by the given session.
	ReleaseFeature(ctx context.Context, sessionID, featureID string) (bool, error)

	// CompleteFeature marks the session's claimed feature completed,
	// releases the claim, and bumps the session's completion counter.
	CompleteFeature(ctx context.Context, sessionID, featureID string) error

	// EndSession moves a session to a terminal status.
	EndSession(ctx context.Context, sessionID, status string) error

	// Stats returns aggregate feature statistics.
	Stats(ctx context.Context) (*StatsResponse, error)
}

// Session represents a work session at the port boundary.
type Session struct {
	ID                 string
	Status             string
	CurrentFeatureID   string
	CurrentFeatureName string
	FeaturesCompleted  int
	StartedAt          string
	EndedAt            string
}

// SessionResponse contains the result of resume-or-start.
type SessionResponse struct {
	Session *Session
	Resumed bool // true when an existing running session was picked up
}

// StatsResponse contains aggregate feature statistics.
type StatsResponse struct {
	Total           int
	ByStatus        map[string]int
	PercentComplete float64
}
