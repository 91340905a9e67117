package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/isc"
	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/ports/secondary"
)

// CriterionServiceImpl implements the CriterionService interface. It
// bridges the two homes of a criterion: the ISC document on disk, which
// the gates validate, and the store rows, which make criteria queryable
// without re-parsing markdown.
type CriterionServiceImpl struct {
	criterionRepo secondary.CriterionRepository
	featureRepo   secondary.FeatureRepository
	layout        artifact.Layout
	logWriter     secondary.LogWriter
}

// NewCriterionService creates a new CriterionService with injected dependencies.
func NewCriterionService(
	criterionRepo secondary.CriterionRepository,
	featureRepo secondary.FeatureRepository,
	layout artifact.Layout,
	logWriter secondary.LogWriter,
) *CriterionServiceImpl {
	return &CriterionServiceImpl{
		criterionRepo: criterionRepo,
		featureRepo:   featureRepo,
		layout:        layout,
		logWriter:     logWriter,
	}
}

// CheckDocument parses the feature's ISC document and reports on it.
func (s *CriterionServiceImpl) CheckDocument(ctx context.Context, feature string) (*primary.CriteriaReport, error) {
	record, err := s.resolve(ctx, feature)
	if err != nil {
		return nil, err
	}

	path := s.layout.ISCPath(record.Name)
	doc, err := s.parseDocument(path)
	if err != nil {
		return nil, err
	}

	report := &primary.CriteriaReport{
		Feature:    record.Name,
		Path:       path,
		Violations: isc.Validate(doc),
		Quality:    isc.AssessQuality(doc),
	}
	for _, c := range doc.Criteria {
		report.Criteria = append(report.Criteria, &primary.Criterion{
			CID:      c.ID,
			Text:     c.Text,
			Status:   string(c.Status),
			Evidence: c.Evidence,
			Phase:    c.Phase,
		})
	}
	return report, nil
}

// ImportCriteria parses the feature's ISC document and upserts every
// tracker and anti-criterion row into the store. Re-importing after a
// document edit refreshes rows in place.
func (s *CriterionServiceImpl) ImportCriteria(ctx context.Context, feature string) (*primary.ImportResponse, error) {
	// 1. Resolve the feature; criteria rows hang off its ID
	record, err := s.resolve(ctx, feature)
	if err != nil {
		return nil, err
	}

	// 2. Parse the document
	doc, err := s.parseDocument(s.layout.ISCPath(record.Name))
	if err != nil {
		return nil, err
	}

	// 3. Upsert every typed row
	imported := 0
	for _, c := range doc.Criteria {
		err := s.criterionRepo.Upsert(ctx, &secondary.CriterionRecord{
			FeatureID: record.ID,
			CID:       c.ID,
			Text:      c.Text,
			Status:    string(c.Status),
			Evidence:  c.Evidence,
			Phase:     c.Phase,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to import criterion %s: %w", c.ID, err)
		}
		imported++
	}
	for _, a := range doc.AntiCriteria {
		err := s.criterionRepo.Upsert(ctx, &secondary.CriterionRecord{
			FeatureID: record.ID,
			CID:       a.ID,
			Text:      a.Text,
			Status:    string(a.Status),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to import anti-criterion %s: %w", a.ID, err)
		}
		imported++
	}

	// 4. Audit (best effort)
	_ = s.logWriter.LogUpdate(ctx, "feature", record.ID, "criteria", "", fmt.Sprintf("%d imported", imported))

	return &primary.ImportResponse{
		Feature:  record.Name,
		Imported: imported,
	}, nil
}

// ListCriteria lists the stored criteria for a feature.
func (s *CriterionServiceImpl) ListCriteria(ctx context.Context, feature string) ([]*primary.Criterion, error) {
	record, err := s.resolve(ctx, feature)
	if err != nil {
		return nil, err
	}

	records, err := s.criterionRepo.ListByFeature(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}

	criteria := make([]*primary.Criterion, 0, len(records))
	for _, r := range records {
		criteria = append(criteria, &primary.Criterion{
			CID:      r.CID,
			Text:     r.Text,
			Status:   r.Status,
			Evidence: r.Evidence,
			Phase:    r.Phase,
		})
	}
	return criteria, nil
}

// UpdateCriterionStatus sets one criterion's status and evidence. The
// status token is validated against the symbol set for the row's
// section: tracker rows (C-prefix) and anti rows (A-prefix) accept
// different statuses.
func (s *CriterionServiceImpl) UpdateCriterionStatus(ctx context.Context, feature, cid, status, evidence string) error {
	record, err := s.resolve(ctx, feature)
	if err != nil {
		return err
	}

	canonical, err := canonicalStatus(cid, status)
	if err != nil {
		return err
	}

	if err := s.criterionRepo.UpdateStatus(ctx, record.ID, cid, canonical, evidence); err != nil {
		return err
	}

	_ = s.logWriter.LogUpdate(ctx, "criterion", record.ID+"/"+cid, "status", "", canonical)

	return nil
}

// resolve fetches a feature record by ID or name.
func (s *CriterionServiceImpl) resolve(ctx context.Context, idOrName string) (*secondary.FeatureRecord, error) {
	if strings.HasPrefix(idOrName, "FEAT-") {
		return s.featureRepo.GetByID(ctx, idOrName)
	}
	return s.featureRepo.GetByName(ctx, idOrName)
}

// parseDocument reads and parses an ISC document from disk.
func (s *CriterionServiceImpl) parseDocument(path string) (*isc.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ISC document %s: %w", path, err)
	}
	return isc.Parse(string(raw)), nil
}

// canonicalStatus validates a status token for the section the cid
// belongs to and returns its canonical form.
func canonicalStatus(cid, status string) (string, error) {
	if strings.HasPrefix(cid, "A") {
		parsed, ok := isc.ParseAntiStatus(status)
		if !ok {
			return "", fmt.Errorf("invalid anti-criterion status %q", status)
		}
		return string(parsed), nil
	}
	parsed, ok := isc.ParseCriterionStatus(status)
	if !ok {
		return "", fmt.Errorf("invalid criterion status %q", status)
	}
	return string(parsed), nil
}

// Ensure CriterionServiceImpl implements the interface
var _ primary.CriterionService = (*CriterionServiceImpl)(nil)
