package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/specfirst/internal/adapters/sqlite"
	"github.com/example/specfirst/internal/ports/secondary"
)

func TestFeatureRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	feature := &secondary.FeatureRecord{
		ID:       "FEAT-001",
		Name:     "payment-retry",
		Priority: 1,
		Status:   "pending",
	}

	if err := repo.Create(ctx, feature); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, "FEAT-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Name != "payment-retry" {
		t.Errorf("expected name 'payment-retry', got '%s'", retrieved.Name)
	}
	if retrieved.Status != "pending" {
		t.Errorf("expected status 'pending', got '%s'", retrieved.Status)
	}
	if retrieved.SessionID != "" {
		t.Errorf("expected new feature to be unclaimed, got session '%s'", retrieved.SessionID)
	}
	if retrieved.CreatedAt == "" {
		t.Error("expected created_at to be set")
	}
}

func TestFeatureRepository_Create_RequiresPrepopulatedFields(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &secondary.FeatureRecord{Name: "no-id", Status: "pending"})
	if err == nil {
		t.Error("expected error for missing ID")
	}

	err = repo.Create(ctx, &secondary.FeatureRecord{ID: "FEAT-001", Name: "no-status"})
	if err == nil {
		t.Error("expected error for missing Status")
	}
}

func TestFeatureRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "FEAT-999")
	if err == nil {
		t.Error("expected error for non-existent feature")
	}
}

func TestFeatureRepository_GetByName(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-007", "export-csv")

	retrieved, err := repo.GetByName(ctx, "export-csv")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if retrieved.ID != "FEAT-007" {
		t.Errorf("expected ID FEAT-007, got %s", retrieved.ID)
	}

	if _, err := repo.GetByName(ctx, "no-such-feature"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestFeatureRepository_List_Filters(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-001", "one")
	seedFeature(t, db, "FEAT-002", "two")
	seedFeature(t, db, "FEAT-003", "three")
	sessionID := seedSession(t, db, "")

	if _, err := db.Exec("UPDATE features SET status = 'completed' WHERE id = 'FEAT-001'"); err != nil {
		t.Fatalf("failed to complete feature: %v", err)
	}
	if _, err := db.Exec("UPDATE features SET session_id = ? WHERE id = 'FEAT-002'", sessionID); err != nil {
		t.Fatalf("failed to claim feature: %v", err)
	}

	all, err := repo.List(ctx, secondary.FeatureFilters{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 features, got %d", len(all))
	}

	pending, err := repo.List(ctx, secondary.FeatureFilters{Status: "pending"})
	if err != nil {
		t.Fatalf("List by status failed: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("expected 2 pending features, got %d", len(pending))
	}

	claimed, err := repo.List(ctx, secondary.FeatureFilters{SessionID: sessionID})
	if err != nil {
		t.Fatalf("List by session failed: %v", err)
	}
	if len(claimed) != 1 || claimed[0].ID != "FEAT-002" {
		t.Errorf("expected only FEAT-002 claimed by session, got %+v", claimed)
	}

	limited, err := repo.List(ctx, secondary.FeatureFilters{Limit: 2})
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 features with limit, got %d", len(limited))
	}
}

func TestFeatureRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-001", "payment-retry")

	startedAt := time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	err := repo.Update(ctx, &secondary.FeatureRecord{
		ID:        "FEAT-001",
		Status:    "in_progress",
		Phase:     "specify",
		SpecPath:  "specs/payment-retry/spec.md",
		StartedAt: startedAt,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := repo.GetByID(ctx, "FEAT-001")
	if retrieved.Status != "in_progress" {
		t.Errorf("expected status 'in_progress', got '%s'", retrieved.Status)
	}
	if retrieved.Phase != "specify" {
		t.Errorf("expected phase 'specify', got '%s'", retrieved.Phase)
	}
	if retrieved.SpecPath != "specs/payment-retry/spec.md" {
		t.Errorf("unexpected spec path '%s'", retrieved.SpecPath)
	}
	if retrieved.StartedAt != startedAt {
		t.Errorf("expected started_at %s, got %s", startedAt, retrieved.StartedAt)
	}
}

func TestFeatureRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	err := repo.Update(ctx, &secondary.FeatureRecord{ID: "FEAT-999", Status: "completed"})
	if err == nil {
		t.Error("expected error for non-existent feature")
	}
}

func TestFeatureRepository_Update_DoesNotTouchClaim(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-001", "payment-retry")
	sessionID := seedSession(t, db, "")

	ok, err := repo.Claim(ctx, "FEAT-001", sessionID)
	if err != nil || !ok {
		t.Fatalf("Claim failed: ok=%v err=%v", ok, err)
	}

	if err := repo.Update(ctx, &secondary.FeatureRecord{ID: "FEAT-001", Status: "in_progress"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := repo.GetByID(ctx, "FEAT-001")
	if retrieved.SessionID != sessionID {
		t.Errorf("expected claim to survive update, got session '%s'", retrieved.SessionID)
	}
}

func TestFeatureRepository_Claim(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-001", "payment-retry")
	sessionID := seedSession(t, db, "")

	ok, err := repo.Claim(ctx, "FEAT-001", sessionID)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if !ok {
		t.Error("expected claim of unclaimed feature to succeed")
	}

	// Claiming again from the same session is a no-op success.
	ok, err = repo.Claim(ctx, "FEAT-001", sessionID)
	if err != nil {
		t.Fatalf("re-Claim failed: %v", err)
	}
	if !ok {
		t.Error("expected re-claim by owning session to succeed")
	}
}

func TestFeatureRepository_Claim_ExclusiveAcrossSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-001", "payment-retry")
	first := seedSession(t, db, "11111111-1111-4111-8111-111111111111")
	second := seedSession(t, db, "22222222-2222-4222-8222-222222222222")

	firstOK, err := repo.Claim(ctx, "FEAT-001", first)
	if err != nil {
		t.Fatalf("first Claim failed: %v", err)
	}
	secondOK, err := repo.Claim(ctx, "FEAT-001", second)
	if err != nil {
		t.Fatalf("second Claim failed: %v", err)
	}

	// Exactly one session may hold the feature.
	if !firstOK || secondOK {
		t.Errorf("expected first=true second=false, got first=%v second=%v", firstOK, secondOK)
	}

	retrieved, _ := repo.GetByID(ctx, "FEAT-001")
	if retrieved.SessionID != first {
		t.Errorf("expected feature held by first session, got '%s'", retrieved.SessionID)
	}
}

func TestFeatureRepository_Claim_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	sessionID := seedSession(t, db, "")

	_, err := repo.Claim(ctx, "FEAT-999", sessionID)
	if err == nil {
		t.Error("expected error when claiming a non-existent feature")
	}
}

func TestFeatureRepository_Release(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	seedFeature(t, db, "FEAT-001", "payment-retry")
	owner := seedSession(t, db, "11111111-1111-4111-8111-111111111111")
	other := seedSession(t, db, "22222222-2222-4222-8222-222222222222")

	if ok, _ := repo.Claim(ctx, "FEAT-001", owner); !ok {
		t.Fatal("setup claim failed")
	}

	// A stale release from another session must not clobber the claim.
	ok, err := repo.Release(ctx, "FEAT-001", other)
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if ok {
		t.Error("expected release by non-owner to report false")
	}
	retrieved, _ := repo.GetByID(ctx, "FEAT-001")
	if retrieved.SessionID != owner {
		t.Errorf("expected claim to survive stale release, got '%s'", retrieved.SessionID)
	}

	ok, err = repo.Release(ctx, "FEAT-001", owner)
	if err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if !ok {
		t.Error("expected release by owner to succeed")
	}
	retrieved, _ = repo.GetByID(ctx, "FEAT-001")
	if retrieved.SessionID != "" {
		t.Errorf("expected feature unclaimed after release, got '%s'", retrieved.SessionID)
	}
}

func TestFeatureRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "FEAT-001" {
		t.Errorf("expected FEAT-001 on empty table, got %s", id)
	}

	seedFeature(t, db, "FEAT-001", "one")
	seedFeature(t, db, "FEAT-010", "ten")

	id, err = repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "FEAT-011" {
		t.Errorf("expected FEAT-011 after FEAT-010, got %s", id)
	}
}

func TestFeatureRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewFeatureRepository(db)
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 0 || stats.PercentComplete != 0 {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	seedFeature(t, db, "FEAT-001", "one")
	seedFeature(t, db, "FEAT-002", "two")
	seedFeature(t, db, "FEAT-003", "three")
	seedFeature(t, db, "FEAT-004", "four")
	if _, err := db.Exec("UPDATE features SET status = 'completed' WHERE id IN ('FEAT-001', 'FEAT-002')"); err != nil {
		t.Fatalf("failed to complete features: %v", err)
	}
	if _, err := db.Exec("UPDATE features SET status = 'in_progress' WHERE id = 'FEAT-003'"); err != nil {
		t.Fatalf("failed to start feature: %v", err)
	}

	stats, err = repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("expected total 4, got %d", stats.Total)
	}
	if stats.ByStatus["completed"] != 2 {
		t.Errorf("expected 2 completed, got %d", stats.ByStatus["completed"])
	}
	if stats.ByStatus["pending"] != 1 {
		t.Errorf("expected 1 pending, got %d", stats.ByStatus["pending"])
	}
	if stats.PercentComplete != 50 {
		t.Errorf("expected 50%% complete, got %v", stats.PercentComplete)
	}
}
