package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	corefeature "github.com/example/specfirst/internal/core/feature"
	coresession "github.com/example/specfirst/internal/core/session"
	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/ports/secondary"
)

// SessionServiceImpl implements the SessionService interface.
type SessionServiceImpl struct {
	sessionRepo secondary.SessionRepository
	featureRepo secondary.FeatureRepository
	logWriter   secondary.LogWriter
}

// NewSessionService creates a new SessionService with injected dependencies.
func NewSessionService(
	sessionRepo secondary.SessionRepository,
	featureRepo secondary.FeatureRepository,
	logWriter secondary.LogWriter,
) *SessionServiceImpl {
	return &SessionServiceImpl{
		sessionRepo: sessionRepo,
		featureRepo: featureRepo,
		logWriter:   logWriter,
	}
}

// ResumeOrStart resumes the running session or starts a new one.
func (s *SessionServiceImpl) ResumeOrStart(ctx context.Context) (*primary.SessionResponse, error) {
	// 1. Look for a running session
	running, err := s.sessionRepo.GetRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up running session: %w", err)
	}
	if running != nil {
		view, err := s.recordToSession(ctx, running)
		if err != nil {
			return nil, err
		}
		return &primary.SessionResponse{Session: view, Resumed: true}, nil
	}

	// 2. Start a fresh session with pre-populated ID and initial status
	record := &secondary.SessionRecord{
		ID:     uuid.NewString(),
		Status: string(coresession.InitialStatus()),
	}
	if err := s.sessionRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// 3. Audit (best effort)
	_ = s.logWriter.LogCreate(ctx, "session", record.ID)

	// 4. Re-read for the storage-assigned start timestamp
	created, err := s.sessionRepo.GetByID(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read created session: %w", err)
	}

	view, err := s.recordToSession(ctx, created)
	if err != nil {
		return nil, err
	}
	return &primary.SessionResponse{Session: view, Resumed: false}, nil
}

// Current returns the running session, or nil when none is running.
func (s *SessionServiceImpl) Current(ctx context.Context) (*primary.Session, error) {
	running, err := s.sessionRepo.GetRunning(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up running session: %w", err)
	}
	if running == nil {
		return nil, nil
	}
	return s.recordToSession(ctx, running)
}

// ClaimFeature exclusively claims a feature for a session.
func (s *SessionServiceImpl) ClaimFeature(ctx context.Context, sessionID, featureID string) (bool, error) {
	// 1. Atomic claim; a lost race reports false without mutating anything
	claimed, err := s.featureRepo.Claim(ctx, featureID, sessionID)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	// 2. Point the session at its claimed feature
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	session.CurrentFeatureID = featureID
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return false, fmt.Errorf("failed to update session: %w", err)
	}

	// 3. Audit (best effort)
	_ = s.logWriter.LogUpdate(ctx, "feature", featureID, "session_id", "", sessionID)

	return true, nil
}

// ReleaseFeature releases a claim held by the given session.
func (s *SessionServiceImpl) ReleaseFeature(ctx context.Context, sessionID, featureID string) (bool, error) {
	released, err := s.featureRepo.Release(ctx, featureID, sessionID)
	if err != nil {
		return false, err
	}
	if !released {
		return false, nil
	}

	if err := s.clearCurrentFeature(ctx, sessionID, featureID); err != nil {
		return false, err
	}

	_ = s.logWriter.LogUpdate(ctx, "feature", featureID, "session_id", sessionID, "")

	return true, nil
}

// CompleteFeature marks the claimed feature completed and releases it.
func (s *SessionServiceImpl) CompleteFeature(ctx context.Context, sessionID, featureID string) error {
	// 1. Fetch the feature and verify ownership
	feature, err := s.featureRepo.GetByID(ctx, featureID)
	if err != nil {
		return err
	}
	if feature.SessionID != sessionID {
		return fmt.Errorf("feature %s is not claimed by session %s", featureID, sessionID)
	}

	// 2. Apply the completion transition from core
	oldStatus := feature.Status
	result := corefeature.ApplyTransition(corefeature.StatusCompleted, feature.StartedAt != "", time.Now().UTC())
	feature.Status = string(result.NewStatus)
	if result.StartedAt != nil {
		feature.StartedAt = result.StartedAt.Format(time.RFC3339)
	}
	if result.CompletedAt != nil {
		feature.CompletedAt = result.CompletedAt.Format(time.RFC3339)
	}
	if err := s.featureRepo.Update(ctx, feature); err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	// 3. Release the claim and bump the session counter
	if _, err := s.featureRepo.Release(ctx, featureID, sessionID); err != nil {
		return fmt.Errorf("failed to release feature: %w", err)
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	session.FeaturesCompleted++
	if session.CurrentFeatureID == featureID {
		session.CurrentFeatureID = ""
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	// 4. Audit (best effort)
	_ = s.logWriter.LogUpdate(ctx, "feature", featureID, "status", oldStatus, feature.Status)

	return nil
}

// EndSession moves a session to a terminal status.
func (s *SessionServiceImpl) EndSession(ctx context.Context, sessionID, status string) error {
	// 1. Validate the end transition up front; nothing is mutated for a
	// bad status
	parsed, err := coresession.ParseStatus(status)
	if err != nil {
		return err
	}
	result, err := coresession.End(parsed, time.Now().UTC())
	if err != nil {
		return err
	}

	// 2. Fetch the session
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	oldStatus := session.Status

	// 3. Release any held claim before the session goes away
	if session.CurrentFeatureID != "" {
		if _, err := s.featureRepo.Release(ctx, session.CurrentFeatureID, sessionID); err != nil {
			return fmt.Errorf("failed to release feature: %w", err)
		}
	}

	// 4. Apply the end transition
	session.Status = string(result.NewStatus)
	session.EndedAt = result.EndedAt.Format(time.RFC3339)
	session.CurrentFeatureID = ""
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	// 5. Audit (best effort)
	_ = s.logWriter.LogUpdate(ctx, "session", sessionID, "status", oldStatus, session.Status)

	return nil
}

// Stats returns aggregate feature statistics.
func (s *SessionServiceImpl) Stats(ctx context.Context) (*primary.StatsResponse, error) {
	stats, err := s.featureRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return &primary.StatsResponse{
		Total:           stats.Total,
		ByStatus:        stats.ByStatus,
		PercentComplete: stats.PercentComplete,
	}, nil
}

// clearCurrentFeature drops the session's pointer to a feature, but only
// when it still points at that feature.
func (s *SessionServiceImpl) clearCurrentFeature(ctx context.Context, sessionID, featureID string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	if session.CurrentFeatureID != featureID {
		return nil
	}
	session.CurrentFeatureID = ""
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// recordToSession converts a storage record to the port-level view,
// resolving the claimed feature's name when one is set.
func (s *SessionServiceImpl) recordToSession(ctx context.Context, record *secondary.SessionRecord) (*primary.Session, error) {
	view := &primary.Session{
		ID:                record.ID,
		Status:            record.Status,
		CurrentFeatureID:  record.CurrentFeatureID,
		FeaturesCompleted: record.FeaturesCompleted,
		StartedAt:         record.StartedAt,
		EndedAt:           record.EndedAt,
	}
	if record.CurrentFeatureID != "" {
		feature, err := s.featureRepo.GetByID(ctx, record.CurrentFeatureID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve claimed feature: %w", err)
		}
		view.CurrentFeatureName = feature.Name
	}
	return view, nil
}

// Ensure SessionServiceImpl implements the interface
var _ primary.SessionService = (*SessionServiceImpl)(nil)
