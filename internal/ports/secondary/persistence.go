// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// FeatureRepository defines the secondary port for feature persistence.
type FeatureRepository interface {
	// Create persists a new feature.
	Create(ctx context.Context, feature *FeatureRecord) error

	// GetByID retrieves a feature by its ID.
	GetByID(ctx context.Context, id string) (*FeatureRecord, error)

	// GetByName retrieves a feature by its unique name.
	GetByName(ctx context.Context, name string) (*FeatureRecord, error)

	// List retrieves features matching the given filters.
	List(ctx context.Context, filters FeatureFilters) ([]*FeatureRecord, error)

	// Update updates an existing feature's mutable fields.
	Update(ctx context.Context, feature *FeatureRecord) error

	// Claim atomically assigns the feature to a session. It succeeds
	// only when the feature is unclaimed or already claimed by the same
	// session; the result reports whether the claim took.
	Claim(ctx context.Context, featureID, sessionID string) (bool, error)

	// Release clears the feature's session only when it is still held
	// by the given session. A stale release never clobbers a newer claim.
	Release(ctx context.Context, featureID, sessionID string) (bool, error)

	// GetNextID returns the next available feature ID.
	GetNextID(ctx context.Context) (string, error)

	// Stats returns aggregate counts over all features.
	Stats(ctx context.Context) (*FeatureStats, error)
}

// FeatureRecord represents a feature as stored in persistence.
// Timestamps are RFC3339 strings, empty when unset.
type FeatureRecord struct {
	ID       string
	Name     string
	Priority int
	Status   string
	Phase    string // last completed phase, empty when not started

	// Artifact locations, populated as phases produce them.
	ConstitutionPath string
	ProposalPath     string
	SpecPath         string
	PlanPath         string
	TasksPath        string

	SessionID string // owning session, empty when unclaimed

	PRDStatus           string
	EffortLevel         string
	Iteration           int
	VerificationSummary string

	CreatedAt   string
	StartedAt   string
	CompletedAt string
}

// FeatureFilters contains filter options for querying features.
type FeatureFilters struct {
	Status    string
	SessionID string
	Limit     int
}

// FeatureStats contains aggregate counts over all features.
type FeatureStats struct {
	Total           int
	ByStatus        map[string]int
	PercentComplete float64 // completed / total, 0 when total is 0
}

// CriterionRepository defines the secondary port for ISC criterion persistence.
type CriterionRepository interface {
	// Upsert inserts the criterion or updates the existing row with the
	// same (feature, cid) pair.
	Upsert(ctx context.Context, criterion *CriterionRecord) error

	// ListByFeature retrieves all criteria for a feature in cid order.
	ListByFeature(ctx context.Context, featureID string) ([]*CriterionRecord, error)

	// UpdateStatus sets the status and evidence of one criterion.
	UpdateStatus(ctx context.Context, featureID, cid, status, evidence string) error

	// DeleteByFeature removes all criteria for a feature.
	DeleteByFeature(ctx context.Context, featureID string) error
}

// CriterionRecord represents one ISC criterion as stored in persistence.
type CriterionRecord struct {
	ID        int64  // storage identity
	FeatureID string // FK to features
	CID       string // document-local id, e.g. "C1"
	Text      string
	Status    string
	Evidence  string
	Phase     string // optional phase tag
	CreatedAt string
	UpdatedAt string
}

// SessionRepository defines the secondary port for session persistence.
type SessionRepository interface {
	// Create persists a new session.
	Create(ctx context.Context, session *SessionRecord) error

	// GetByID retrieves a session by its ID.
	GetByID(ctx context.Context, id string) (*SessionRecord, error)

	// GetRunning retrieves the session with status running, or nil when
	// no session is running.
	GetRunning(ctx context.Context) (*SessionRecord, error)

	// Update updates an existing session's mutable fields.
	Update(ctx context.Context, session *SessionRecord) error

	// List retrieves sessions, most recent first.
	List(ctx context.Context, limit int) ([]*SessionRecord, error)
}

// SessionRecord represents a work session as stored in persistence.
type SessionRecord struct {
	ID                string
	Status            string
	CurrentFeatureID  string // empty when no feature is claimed
	FeaturesCompleted int
	StartedAt         string
	EndedAt           string
}
