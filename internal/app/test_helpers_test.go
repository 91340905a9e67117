package app

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/example/specfirst/internal/core/artifact"
	corefeature "github.com/example/specfirst/internal/core/feature"
	"github.com/example/specfirst/internal/ports/secondary"
)

// Ensure the mocks implement their ports
var (
	_ secondary.Ledger              = (*mockLedger)(nil)
	_ secondary.FeatureRepository   = (*mockFeatureRepo)(nil)
	_ secondary.SessionRepository   = (*mockSessionRepo)(nil)
	_ secondary.CriterionRepository = (*mockCriterionRepo)(nil)
	_ secondary.LogWriter           = (*mockLogWriter)(nil)
	_ secondary.AuditLogRepository  = (*mockAuditRepo)(nil)
)

// mockLedger implements secondary.Ledger in memory, in append order.
type mockLedger struct {
	records   []secondary.PhaseRecord
	appendErr error
	readErr   error
}

func newMockLedger() *mockLedger {
	return &mockLedger{}
}

func (m *mockLedger) Append(ctx context.Context, phase, feature, artifactPath string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, secondary.PhaseRecord{
		Phase:        phase,
		Feature:      feature,
		ArtifactPath: artifactPath,
		Status:       "complete",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Ref:          fmt.Sprintf("ref%04d", len(m.records)+1),
	})
	return nil
}

func (m *mockLedger) Exists(ctx context.Context, phase, feature string) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	for _, r := range m.records {
		if r.Phase == phase && r.Feature == feature {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLedger) Latest(ctx context.Context, phase, feature string) (*secondary.PhaseRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Phase == phase && m.records[i].Feature == feature {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *mockLedger) AllFor(ctx context.Context, feature string) ([]secondary.PhaseRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var result []secondary.PhaseRecord
	for _, r := range m.records {
		if r.Feature == feature {
			result = append(result, r)
		}
	}
	return result, nil
}

// seed plants a record directly, bypassing Append and its error injection.
func (m *mockLedger) seed(phase, feature, artifactPath string) {
	m.records = append(m.records, secondary.PhaseRecord{
		Phase:        phase,
		Feature:      feature,
		ArtifactPath: artifactPath,
		Status:       "complete",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Ref:          fmt.Sprintf("ref%04d", len(m.records)+1),
	})
}

// mockFeatureRepo implements secondary.FeatureRepository for testing.
type mockFeatureRepo struct {
	features  map[string]*secondary.FeatureRecord
	createErr error
	updateErr error
	claimErr  error
}

func newMockFeatureRepo() *mockFeatureRepo {
	return &mockFeatureRepo{features: make(map[string]*secondary.FeatureRecord)}
}

func (m *mockFeatureRepo) Create(ctx context.Context, feature *secondary.FeatureRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	stored := *feature
	if stored.CreatedAt == "" {
		stored.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.features[stored.ID] = &stored
	return nil
}

func (m *mockFeatureRepo) GetByID(ctx context.Context, id string) (*secondary.FeatureRecord, error) {
	if f, ok := m.features[id]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, fmt.Errorf("feature %s not found", id)
}

func (m *mockFeatureRepo) GetByName(ctx context.Context, name string) (*secondary.FeatureRecord, error) {
	for _, f := range m.features {
		if f.Name == name {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("feature %s not found", name)
}

func (m *mockFeatureRepo) List(ctx context.Context, filters secondary.FeatureFilters) ([]*secondary.FeatureRecord, error) {
	var result []*secondary.FeatureRecord
	for _, f := range m.features {
		if filters.Status != "" && f.Status != filters.Status {
			continue
		}
		if filters.SessionID != "" && f.SessionID != filters.SessionID {
			continue
		}
		copied := *f
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].ID < result[j].ID
	})
	if filters.Limit > 0 && len(result) > filters.Limit {
		result = result[:filters.Limit]
	}
	return result, nil
}

// Update mirrors the real adapter: ownership is never written here.
func (m *mockFeatureRepo) Update(ctx context.Context, feature *secondary.FeatureRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.features[feature.ID]
	if !ok {
		return fmt.Errorf("feature %s not found", feature.ID)
	}
	updated := *feature
	updated.SessionID = stored.SessionID
	updated.CreatedAt = stored.CreatedAt
	m.features[feature.ID] = &updated
	return nil
}

func (m *mockFeatureRepo) Claim(ctx context.Context, featureID, sessionID string) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	f, ok := m.features[featureID]
	if !ok {
		return false, fmt.Errorf("feature %s not found", featureID)
	}
	if f.SessionID == "" || f.SessionID == sessionID {
		f.SessionID = sessionID
		return true, nil
	}
	return false, nil
}

func (m *mockFeatureRepo) Release(ctx context.Context, featureID, sessionID string) (bool, error) {
	f, ok := m.features[featureID]
	if !ok {
		return false, fmt.Errorf("feature %s not found", featureID)
	}
	if f.SessionID != sessionID {
		return false, nil
	}
	f.SessionID = ""
	return true, nil
}

func (m *mockFeatureRepo) GetNextID(ctx context.Context) (string, error) {
	max := 0
	for id := range m.features {
		if n := corefeature.ParseFeatureNumber(id); n > max {
			max = n
		}
	}
	return corefeature.GenerateFeatureID(max), nil
}

func (m *mockFeatureRepo) Stats(ctx context.Context) (*secondary.FeatureStats, error) {
	stats := &secondary.FeatureStats{ByStatus: make(map[string]int)}
	for _, f := range m.features {
		stats.Total++
		stats.ByStatus[f.Status]++
	}
	if stats.Total > 0 {
		stats.PercentComplete = float64(stats.ByStatus[string(corefeature.StatusCompleted)]) / float64(stats.Total) * 100
	}
	return stats, nil
}

// mockSessionRepo implements secondary.SessionRepository for testing.
type mockSessionRepo struct {
	sessions  map[string]*secondary.SessionRecord
	createErr error
	updateErr error
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*secondary.SessionRecord)}
}

func (m *mockSessionRepo) Create(ctx context.Context, session *secondary.SessionRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	stored := *session
	if stored.StartedAt == "" {
		stored.StartedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.sessions[stored.ID] = &stored
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	if s, ok := m.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, fmt.Errorf("session %s not found", id)
}

func (m *mockSessionRepo) GetRunning(ctx context.Context) (*secondary.SessionRecord, error) {
	for _, s := range m.sessions {
		if s.Status == "running" {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockSessionRepo) Update(ctx context.Context, session *secondary.SessionRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.sessions[session.ID]
	if !ok {
		return fmt.Errorf("session %s not found", session.ID)
	}
	updated := *session
	updated.StartedAt = stored.StartedAt
	m.sessions[session.ID] = &updated
	return nil
}

func (m *mockSessionRepo) List(ctx context.Context, limit int) ([]*secondary.SessionRecord, error) {
	var result []*secondary.SessionRecord
	for _, s := range m.sessions {
		copied := *s
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt > result[j].StartedAt
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// mockCriterionRepo implements secondary.CriterionRepository, keeping
// insertion order per feature.
type mockCriterionRepo struct {
	criteria  map[string][]*secondary.CriterionRecord // featureID -> rows
	upsertErr error
}

func newMockCriterionRepo() *mockCriterionRepo {
	return &mockCriterionRepo{criteria: make(map[string][]*secondary.CriterionRecord)}
}

func (m *mockCriterionRepo) Upsert(ctx context.Context, criterion *secondary.CriterionRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	rows := m.criteria[criterion.FeatureID]
	for _, r := range rows {
		if r.CID == criterion.CID {
			r.Text = criterion.Text
			r.Status = criterion.Status
			r.Evidence = criterion.Evidence
			r.Phase = criterion.Phase
			return nil
		}
	}
	stored := *criterion
	m.criteria[criterion.FeatureID] = append(rows, &stored)
	return nil
}

func (m *mockCriterionRepo) ListByFeature(ctx context.Context, featureID string) ([]*secondary.CriterionRecord, error) {
	rows := m.criteria[featureID]
	result := make([]*secondary.CriterionRecord, len(rows))
	for i, r := range rows {
		copied := *r
		result[i] = &copied
	}
	return result, nil
}

func (m *mockCriterionRepo) UpdateStatus(ctx context.Context, featureID, cid, status, evidence string) error {
	for _, r := range m.criteria[featureID] {
		if r.CID == cid {
			r.Status = status
			r.Evidence = evidence
			return nil
		}
	}
	return fmt.Errorf("criterion %s not found for feature %s", cid, featureID)
}

func (m *mockCriterionRepo) DeleteByFeature(ctx context.Context, featureID string) error {
	delete(m.criteria, featureID)
	return nil
}

// mockLogWriter implements secondary.LogWriter, recording calls as
// "action entityType entityID" strings for assertions.
type mockLogWriter struct {
	entries []string
}

func newMockLogWriter() *mockLogWriter {
	return &mockLogWriter{}
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "create "+entityType+" "+entityID)
	return nil
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	m.entries = append(m.entries, "update "+entityType+" "+entityID)
	return nil
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	m.entries = append(m.entries, "delete "+entityType+" "+entityID)
	return nil
}

// mockAuditRepo implements secondary.AuditLogRepository for testing.
type mockAuditRepo struct {
	records []*secondary.AuditRecord
	nextID  int64
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{nextID: 1}
}

func (m *mockAuditRepo) Insert(ctx context.Context, record *secondary.AuditRecord) error {
	stored := *record
	stored.ID = m.nextID
	m.nextID++
	if stored.Timestamp == "" {
		stored.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	m.records = append(m.records, &stored)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	var result []*secondary.AuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if filters.EntityType != "" && r.EntityType != filters.EntityType {
			continue
		}
		if filters.EntityID != "" && r.EntityID != filters.EntityID {
			continue
		}
		if filters.ActorID != "" && r.ActorID != filters.ActorID {
			continue
		}
		if filters.Action != "" && r.Action != filters.Action {
			continue
		}
		copied := *r
		result = append(result, &copied)
		if filters.Limit > 0 && len(result) == filters.Limit {
			break
		}
	}
	return result, nil
}

func (m *mockAuditRepo) DeleteOlderThan(ctx context.Context, cutoff string) (int, error) {
	limit, err := time.Parse(time.RFC3339, cutoff)
	if err != nil {
		return 0, err
	}
	var kept []*secondary.AuditRecord
	pruned := 0
	for _, r := range m.records {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err == nil && ts.Before(limit) {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return pruned, nil
}

// newTestOrchestrator wires a workflow and resume service over a temp
// project root and an in-memory ledger.
func newTestOrchestrator(t *testing.T) (artifact.Layout, *mockLedger, *WorkflowServiceImpl, *ResumeServiceImpl) {
	t.Helper()
	layout := artifact.NewLayout(t.TempDir(), artifact.SpecsDir)
	ledger := newMockLedger()
	workflow := NewWorkflowService(layout, ledger)
	resume := NewResumeService(ledger, workflow)
	return layout, ledger, workflow, resume
}
