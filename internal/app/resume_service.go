package app

import (
	"context"
	"fmt"

	"github.com/example/specfirst/internal/core/phase"
	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/ports/secondary"
)

// ResumeServiceImpl implements the ResumeService interface. It holds no
// workflow state of its own: every answer is recomputed from the ledger
// on each call, so a process started five seconds ago and one running
// for five days give identical answers.
type ResumeServiceImpl struct {
	ledger   secondary.Ledger
	workflow primary.WorkflowService
}

// NewResumeService creates a new ResumeService with injected dependencies.
func NewResumeService(ledger secondary.Ledger, workflow primary.WorkflowService) *ResumeServiceImpl {
	return &ResumeServiceImpl{
		ledger:   ledger,
		workflow: workflow,
	}
}

// DetectNextPhase walks the phase order and returns the first phase
// with no ledger record. Later records do not patch earlier holes: a
// feature with a specify record but no propose record resumes at
// propose.
func (s *ResumeServiceImpl) DetectNextPhase(ctx context.Context, feature string) (string, error) {
	for _, p := range phase.All() {
		exists, err := s.ledger.Exists(ctx, p.String(), feature)
		if err != nil {
			return "", fmt.Errorf("failed to detect next phase: %w", err)
		}
		if !exists {
			return p.String(), nil
		}
	}
	return "", nil
}

// WorkflowStatus returns the ledger-existence flag for every phase.
func (s *ResumeServiceImpl) WorkflowStatus(ctx context.Context, feature string) (map[string]bool, error) {
	status := make(map[string]bool, len(phase.All()))
	for _, p := range phase.All() {
		exists, err := s.ledger.Exists(ctx, p.String(), feature)
		if err != nil {
			return nil, fmt.Errorf("failed to read workflow status: %w", err)
		}
		status[p.String()] = exists
	}
	return status, nil
}

// History returns the feature's ledger records oldest-first.
func (s *ResumeServiceImpl) History(ctx context.Context, feature string) ([]primary.HistoryEntry, error) {
	records, err := s.ledger.AllFor(ctx, feature)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]primary.HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, primary.HistoryEntry{
			Phase:        r.Phase,
			ArtifactPath: r.ArtifactPath,
			Timestamp:    r.Timestamp,
			Ref:          r.Ref,
		})
	}
	return entries, nil
}

// Resume detects the next phase and runs it through the orchestrator.
func (s *ResumeServiceImpl) Resume(ctx context.Context, req primary.ResumeRequest) (*primary.ResumeResponse, error) {
	// 1. Ask the ledger where the workflow stands
	next, err := s.DetectNextPhase(ctx, req.Feature)
	if err != nil {
		return nil, err
	}

	// 2. Nothing left to run
	if next == "" {
		return &primary.ResumeResponse{
			Feature:   req.Feature,
			Completed: true,
		}, nil
	}

	// 3. Dispatch the detected phase; gate vetoes propagate unwrapped
	ran, err := s.workflow.RunPhase(ctx, primary.RunPhaseRequest{
		Phase:   next,
		Feature: req.Feature,
		Execute: req.Execute,
	})
	if err != nil {
		return nil, err
	}

	return &primary.ResumeResponse{
		Feature: req.Feature,
		Ran:     ran,
	}, nil
}

// Ensure ResumeServiceImpl implements the interface
var _ primary.ResumeService = (*ResumeServiceImpl)(nil)
