package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/specfirst/internal/core/artifact"
	corefeature "github.com/example/specfirst/internal/core/feature"
	"github.com/example/specfirst/internal/core/phase"
	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/ports/secondary"
	"github.com/example/specfirst/internal/scaffold"
)

// FeatureServiceImpl implements the FeatureService interface.
type FeatureServiceImpl struct {
	featureRepo secondary.FeatureRepository
	layout      artifact.Layout
	generator   *scaffold.Generator
	logWriter   secondary.LogWriter
}

// NewFeatureService creates a new FeatureService with injected dependencies.
func NewFeatureService(
	featureRepo secondary.FeatureRepository,
	layout artifact.Layout,
	logWriter secondary.LogWriter,
) *FeatureServiceImpl {
	return &FeatureServiceImpl{
		featureRepo: featureRepo,
		layout:      layout,
		generator:   scaffold.NewGenerator(),
		logWriter:   logWriter,
	}
}

// CreateFeature registers a new feature and scaffolds its directory.
func (s *FeatureServiceImpl) CreateFeature(ctx context.Context, req primary.CreateFeatureRequest) (*primary.CreateFeatureResponse, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("feature name is required")
	}

	// 1. Generate ID using core business rule
	nextID, err := s.featureRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate feature ID: %w", err)
	}

	// 2. Create record with pre-populated ID and initial status from core
	record := &secondary.FeatureRecord{
		ID:          nextID,
		Name:        req.Name,
		Priority:    req.Priority,
		Status:      string(corefeature.InitialStatus()),
		EffortLevel: req.EffortLevel,
	}
	if err := s.featureRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create feature: %w", err)
	}

	// 3. Scaffold the feature directory with an ISC tracker stub
	if err := s.scaffoldFeatureDir(req.Name); err != nil {
		return nil, err
	}

	// 4. Audit (best effort)
	_ = s.logWriter.LogCreate(ctx, "feature", record.ID)

	// 5. Re-read for the storage-assigned creation timestamp
	created, err := s.featureRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read created feature: %w", err)
	}

	return &primary.CreateFeatureResponse{
		FeatureID: created.ID,
		Feature:   recordToFeature(created),
	}, nil
}

// GetFeature retrieves a feature by ID or name. IDs carry the FEAT-
// prefix; kebab-case names never do, so the lookup is unambiguous.
func (s *FeatureServiceImpl) GetFeature(ctx context.Context, idOrName string) (*primary.Feature, error) {
	record, err := s.resolve(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	return recordToFeature(record), nil
}

// ListFeatures lists features with optional filters.
func (s *FeatureServiceImpl) ListFeatures(ctx context.Context, filters primary.FeatureFilters) ([]*primary.Feature, error) {
	records, err := s.featureRepo.List(ctx, secondary.FeatureFilters{
		Status:    filters.Status,
		SessionID: filters.SessionID,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}

	features := make([]*primary.Feature, 0, len(records))
	for _, record := range records {
		features = append(features, recordToFeature(record))
	}
	return features, nil
}

// UpdateStatus transitions a feature's status.
func (s *FeatureServiceImpl) UpdateStatus(ctx context.Context, idOrName, status string) error {
	// 1. Validate the target status name
	parsed, err := corefeature.ParseStatus(status)
	if err != nil {
		return err
	}

	// 2. Fetch and transition
	record, err := s.resolve(ctx, idOrName)
	if err != nil {
		return err
	}
	oldStatus := record.Status
	s.applyTransition(record, parsed)

	if err := s.featureRepo.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	// 3. Audit (best effort)
	_ = s.logWriter.LogUpdate(ctx, "feature", record.ID, "status", oldStatus, record.Status)

	return nil
}

// RecordPhase records a completed phase on the feature row: the phase
// field, the produced artifact's path, and the status bump the phase
// implies. The ledger stays the authority for workflow state; these
// columns exist for listing and stats.
func (s *FeatureServiceImpl) RecordPhase(ctx context.Context, idOrName, phaseName string) error {
	// 1. Validate the phase name
	p, err := phase.Parse(phaseName)
	if err != nil {
		return err
	}

	// 2. Fetch the feature
	record, err := s.resolve(ctx, idOrName)
	if err != nil {
		return err
	}
	oldPhase := record.Phase

	// 3. Stamp phase and artifact path
	record.Phase = p.String()
	if kind, ok := artifact.ProducedBy(p); ok {
		path := s.layout.Path(record.Name, kind)
		if rel, err := filepath.Rel(s.layout.Root(), path); err == nil {
			path = rel
		}
		setArtifactPath(record, kind, path)
	}

	// 4. Status bump: any phase starts a pending feature, release completes it
	if p == phase.Release {
		s.applyTransition(record, corefeature.StatusCompleted)
	} else if record.Status == string(corefeature.StatusPending) {
		s.applyTransition(record, corefeature.StatusInProgress)
	}

	if err := s.featureRepo.Update(ctx, record); err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	// 5. Audit (best effort)
	_ = s.logWriter.LogUpdate(ctx, "feature", record.ID, "phase", oldPhase, record.Phase)

	return nil
}

// resolve fetches a feature record by ID or name.
func (s *FeatureServiceImpl) resolve(ctx context.Context, idOrName string) (*secondary.FeatureRecord, error) {
	if strings.HasPrefix(idOrName, "FEAT-") {
		return s.featureRepo.GetByID(ctx, idOrName)
	}
	return s.featureRepo.GetByName(ctx, idOrName)
}

// applyTransition runs the core status transition and writes its
// timestamps back into the record.
func (s *FeatureServiceImpl) applyTransition(record *secondary.FeatureRecord, status corefeature.Status) {
	result := corefeature.ApplyTransition(status, record.StartedAt != "", time.Now().UTC())
	record.Status = string(result.NewStatus)
	if result.StartedAt != nil {
		record.StartedAt = result.StartedAt.Format(time.RFC3339)
	}
	if result.CompletedAt != nil {
		record.CompletedAt = result.CompletedAt.Format(time.RFC3339)
	}
}

// scaffoldFeatureDir creates specs/<feature>/ with an ISC tracker stub.
// A pre-existing tracker is kept untouched.
func (s *FeatureServiceImpl) scaffoldFeatureDir(name string) error {
	dir := s.layout.FeatureDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create feature directory: %w", err)
	}

	iscPath := s.layout.ISCPath(name)
	if _, err := os.Stat(iscPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check ISC tracker: %w", err)
	}

	content, err := s.generator.ISC(name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to generate ISC tracker: %w", err)
	}
	if err := os.WriteFile(iscPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write ISC tracker: %w", err)
	}
	return nil
}

// setArtifactPath writes the produced artifact's location into the
// record column matching its kind.
func setArtifactPath(record *secondary.FeatureRecord, kind artifact.Kind, path string) {
	switch kind {
	case artifact.Constitution:
		record.ConstitutionPath = path
	case artifact.Proposal:
		record.ProposalPath = path
	case artifact.Spec:
		record.SpecPath = path
	case artifact.Plan:
		record.PlanPath = path
	case artifact.Tasks:
		record.TasksPath = path
	}
}

// recordToFeature converts a storage record to the port-level view.
func recordToFeature(record *secondary.FeatureRecord) *primary.Feature {
	return &primary.Feature{
		ID:                  record.ID,
		Name:                record.Name,
		Priority:            record.Priority,
		Status:              record.Status,
		Phase:               record.Phase,
		SessionID:           record.SessionID,
		PRDStatus:           record.PRDStatus,
		EffortLevel:         record.EffortLevel,
		Iteration:           record.Iteration,
		VerificationSummary: record.VerificationSummary,
		CreatedAt:           record.CreatedAt,
		StartedAt:           record.StartedAt,
		CompletedAt:         record.CompletedAt,
	}
}

// Ensure FeatureServiceImpl implements the interface
var _ primary.FeatureService = (*FeatureServiceImpl)(nil)
