package primary

import "context"

// FeatureService defines the primary port for feature operations.
type FeatureService interface {
	// CreateFeature registers a new feature and scaffolds its directory.
	CreateFeature(ctx context.Context, req CreateFeatureRequest) (*CreateFeatureResponse, error)

	// GetFeature retrieves a feature by ID or name.
	GetFeature(ctx context.Context, idOrName string) (*Feature, error)

	// ListFeatures lists features with optional filters.
	ListFeatures(ctx context.Context, filters FeatureFilters) ([]*Feature, error)

	// UpdateStatus transitions a feature's status, stamping start and
	// completion times as the transition demands.
	UpdateStatus(ctx context.Context, idOrName, status string) error

	// RecordPhase records that a phase completed for the feature: sets
	// the phase field and the produced artifact's path.
	RecordPhase(ctx context.Context, idOrName, phase string) error
}

// CreateFeatureRequest contains parameters for creating a feature.
type CreateFeatureRequest struct {
	Name        string
	Priority    int
	EffortLevel string
}

// CreateFeatureResponse contains the result of creating a feature.
type CreateFeatureResponse struct {
	FeatureID string
	Feature   *Feature
}

// Feature represents a feature at the port boundary.
type Feature struct {
	ID                  string
	Name                string
	Priority            int
	Status              string
	Phase               string
	SessionID           string
	PRDStatus           string
	EffortLevel         string
	Iteration           int
	VerificationSummary string
	CreatedAt           string
	StartedAt           string
	CompletedAt         string
}

// FeatureFilters contains filter options for listing features.
type FeatureFilters struct {
	Status    string
	SessionID string
	Limit     int
}
