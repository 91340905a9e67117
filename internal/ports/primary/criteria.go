package primary

import (
	"context"

	"github.com/example/specfirst/internal/core/isc"
)

// CriterionService defines the primary port for ISC criterion operations.
type CriterionService interface {
	// CheckDocument parses a feature's ISC document and returns the
	// structural violations and quality report. Validation problems are
	// data, not errors; the error return is for I/O only.
	CheckDocument(ctx context.Context, feature string) (*CriteriaReport, error)

	// ImportCriteria parses a feature's ISC document and upserts its
	// criteria into the store, making them queryable.
	ImportCriteria(ctx context.Context, feature string) (*ImportResponse, error)

	// ListCriteria lists the stored criteria for a feature.
	ListCriteria(ctx context.Context, feature string) ([]*Criterion, error)

	// UpdateCriterionStatus sets one criterion's status and evidence.
	UpdateCriterionStatus(ctx context.Context, feature, cid, status, evidence string) error
}

// CriteriaReport contains the full validation view of an ISC document.
type CriteriaReport struct {
	Feature    string
	Path       string
	Violations []isc.Violation
	Quality    isc.QualityReport
	Criteria   []*Criterion // parsed tracker rows, document order
}

// ImportResponse contains the result of importing criteria.
type ImportResponse struct {
	Feature  string
	Imported int
}

// Criterion represents one ISC criterion at the port boundary.
type Criterion struct {
	CID      string
	Text     string
	Status   string
	Evidence string
	Phase    string
}
