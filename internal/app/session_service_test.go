package app

import (
	"context"
	"testing"

	"github.com/example/specfirst/internal/ports/secondary"
)

func newTestSessionService() (*SessionServiceImpl, *mockSessionRepo, *mockFeatureRepo, *mockLogWriter) {
	sessions := newMockSessionRepo()
	features := newMockFeatureRepo()
	logs := newMockLogWriter()
	service := NewSessionService(sessions, features, logs)
	return service, sessions, features, logs
}

func TestSessionService_ResumeOrStart_StartsNew(t *testing.T) {
	service, _, _, logs := newTestSessionService()

	resp, err := service.ResumeOrStart(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Resumed {
		t.Error("expected a fresh session, got resumed")
	}
	if resp.Session.ID == "" {
		t.Error("expected a generated session ID")
	}
	if resp.Session.Status != "running" {
		t.Errorf("expected status running, got %q", resp.Session.Status)
	}
	if resp.Session.StartedAt == "" {
		t.Error("expected a start timestamp")
	}
	if len(logs.entries) != 1 || logs.entries[0] != "create session "+resp.Session.ID {
		t.Errorf("expected a session create audit entry, got %v", logs.entries)
	}
}

func TestSessionService_ResumeOrStart_ResumesRunning(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{
		ID: "FEAT-001", Name: "user-auth", Status: "in_progress", SessionID: "sess-1",
	}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{
		ID: "sess-1", Status: "running", CurrentFeatureID: "FEAT-001", StartedAt: "2026-02-01T08:00:00Z",
	}

	resp, err := service.ResumeOrStart(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.Resumed {
		t.Error("expected the running session to be resumed")
	}
	if resp.Session.ID != "sess-1" {
		t.Errorf("expected sess-1, got %q", resp.Session.ID)
	}
	if resp.Session.CurrentFeatureName != "user-auth" {
		t.Errorf("expected claimed feature name resolved, got %q", resp.Session.CurrentFeatureName)
	}
}

func TestSessionService_Current_NoneRunning(t *testing.T) {
	service, _, _, _ := newTestSessionService()

	session, err := service.Current(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session, got %+v", session)
	}
}

func TestSessionService_ClaimFeature(t *testing.T) {
	service, sessions, features, logs := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", Status: "pending"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running"}

	claimed, err := service.ClaimFeature(ctx, "sess-1", "FEAT-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !claimed {
		t.Fatal("expected the claim to take")
	}
	if features.features["FEAT-001"].SessionID != "sess-1" {
		t.Errorf("expected feature owned by sess-1, got %q", features.features["FEAT-001"].SessionID)
	}
	if sessions.sessions["sess-1"].CurrentFeatureID != "FEAT-001" {
		t.Errorf("expected session pointing at FEAT-001, got %q", sessions.sessions["sess-1"].CurrentFeatureID)
	}
	if len(logs.entries) != 1 {
		t.Errorf("expected one audit entry, got %v", logs.entries)
	}
}

func TestSessionService_ClaimFeature_Conflict(t *testing.T) {
	service, sessions, features, logs := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", Status: "in_progress", SessionID: "sess-other"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running"}

	claimed, err := service.ClaimFeature(ctx, "sess-1", "FEAT-001")
	if err != nil {
		t.Fatalf("conflict is not an error, got %v", err)
	}
	if claimed {
		t.Fatal("expected the claim to be refused")
	}

	// Nothing may have been mutated.
	if features.features["FEAT-001"].SessionID != "sess-other" {
		t.Errorf("expected ownership untouched, got %q", features.features["FEAT-001"].SessionID)
	}
	if sessions.sessions["sess-1"].CurrentFeatureID != "" {
		t.Errorf("expected session untouched, got %q", sessions.sessions["sess-1"].CurrentFeatureID)
	}
	if len(logs.entries) != 0 {
		t.Errorf("expected no audit entries, got %v", logs.entries)
	}
}

func TestSessionService_ClaimFeature_SameSessionIdempotent(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", Status: "pending"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running"}

	for i := 0; i < 2; i++ {
		claimed, err := service.ClaimFeature(ctx, "sess-1", "FEAT-001")
		if err != nil || !claimed {
			t.Fatalf("claim %d: expected true, got claimed=%v err=%v", i+1, claimed, err)
		}
	}
}

func TestSessionService_ReleaseFeature(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", SessionID: "sess-1"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running", CurrentFeatureID: "FEAT-001"}

	released, err := service.ReleaseFeature(ctx, "sess-1", "FEAT-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !released {
		t.Fatal("expected the release to take")
	}
	if features.features["FEAT-001"].SessionID != "" {
		t.Errorf("expected ownership cleared, got %q", features.features["FEAT-001"].SessionID)
	}
	if sessions.sessions["sess-1"].CurrentFeatureID != "" {
		t.Errorf("expected session pointer cleared, got %q", sessions.sessions["sess-1"].CurrentFeatureID)
	}
}

func TestSessionService_ReleaseFeature_StaleRelease(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", SessionID: "sess-2"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running"}

	released, err := service.ReleaseFeature(ctx, "sess-1", "FEAT-001")
	if err != nil {
		t.Fatalf("stale release is not an error, got %v", err)
	}
	if released {
		t.Fatal("expected the stale release to be refused")
	}
	if features.features["FEAT-001"].SessionID != "sess-2" {
		t.Errorf("expected the newer claim to survive, got %q", features.features["FEAT-001"].SessionID)
	}
}

func TestSessionService_CompleteFeature(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{
		ID: "FEAT-001", Name: "user-auth", Status: "in_progress",
		SessionID: "sess-1", StartedAt: "2026-02-01T08:00:00Z",
	}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running", CurrentFeatureID: "FEAT-001"}

	if err := service.CompleteFeature(ctx, "sess-1", "FEAT-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	feature := features.features["FEAT-001"]
	if feature.Status != "completed" {
		t.Errorf("expected status completed, got %q", feature.Status)
	}
	if feature.CompletedAt == "" {
		t.Error("expected a completion timestamp")
	}
	if feature.StartedAt != "2026-02-01T08:00:00Z" {
		t.Errorf("expected start timestamp preserved, got %q", feature.StartedAt)
	}
	if feature.SessionID != "" {
		t.Errorf("expected claim released, got %q", feature.SessionID)
	}

	session := sessions.sessions["sess-1"]
	if session.FeaturesCompleted != 1 {
		t.Errorf("expected completion counter 1, got %d", session.FeaturesCompleted)
	}
	if session.CurrentFeatureID != "" {
		t.Errorf("expected session pointer cleared, got %q", session.CurrentFeatureID)
	}
}

func TestSessionService_CompleteFeature_StampsStartWhenNeverStarted(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", Status: "pending", SessionID: "sess-1"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running", CurrentFeatureID: "FEAT-001"}

	if err := service.CompleteFeature(ctx, "sess-1", "FEAT-001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	feature := features.features["FEAT-001"]
	if feature.StartedAt == "" || feature.CompletedAt == "" {
		t.Errorf("expected both timestamps stamped, got start=%q complete=%q", feature.StartedAt, feature.CompletedAt)
	}
}

func TestSessionService_CompleteFeature_NotOwned(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", Status: "in_progress", SessionID: "sess-2"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running"}

	err := service.CompleteFeature(ctx, "sess-1", "FEAT-001")
	if err == nil {
		t.Fatal("expected error completing a feature owned by another session")
	}
	if features.features["FEAT-001"].Status != "in_progress" {
		t.Errorf("expected feature untouched, got %q", features.features["FEAT-001"].Status)
	}
}

func TestSessionService_EndSession(t *testing.T) {
	service, sessions, features, _ := newTestSessionService()
	ctx := context.Background()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "user-auth", SessionID: "sess-1"}
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running", CurrentFeatureID: "FEAT-001"}

	if err := service.EndSession(ctx, "sess-1", "completed"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	session := sessions.sessions["sess-1"]
	if session.Status != "completed" {
		t.Errorf("expected status completed, got %q", session.Status)
	}
	if session.EndedAt == "" {
		t.Error("expected an end timestamp")
	}
	if session.CurrentFeatureID != "" {
		t.Errorf("expected feature pointer cleared, got %q", session.CurrentFeatureID)
	}
	if features.features["FEAT-001"].SessionID != "" {
		t.Errorf("expected held claim released, got %q", features.features["FEAT-001"].SessionID)
	}
}

func TestSessionService_EndSession_InvalidStatus(t *testing.T) {
	service, sessions, _, _ := newTestSessionService()
	sessions.sessions["sess-1"] = &secondary.SessionRecord{ID: "sess-1", Status: "running"}

	if err := service.EndSession(context.Background(), "sess-1", "paused"); err == nil {
		t.Fatal("expected error for a non-terminal status")
	}
	if sessions.sessions["sess-1"].Status != "running" {
		t.Errorf("expected session untouched, got %q", sessions.sessions["sess-1"].Status)
	}
}

func TestSessionService_Stats(t *testing.T) {
	service, _, features, _ := newTestSessionService()

	features.features["FEAT-001"] = &secondary.FeatureRecord{ID: "FEAT-001", Name: "a", Status: "completed"}
	features.features["FEAT-002"] = &secondary.FeatureRecord{ID: "FEAT-002", Name: "b", Status: "completed"}
	features.features["FEAT-003"] = &secondary.FeatureRecord{ID: "FEAT-003", Name: "c", Status: "pending"}
	features.features["FEAT-004"] = &secondary.FeatureRecord{ID: "FEAT-004", Name: "d", Status: "in_progress"}

	stats, err := service.Stats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("expected total 4, got %d", stats.Total)
	}
	if stats.ByStatus["completed"] != 2 {
		t.Errorf("expected 2 completed, got %d", stats.ByStatus["completed"])
	}
	if stats.PercentComplete != 50 {
		t.Errorf("expected 50 percent, got %.1f", stats.PercentComplete)
	}
}
