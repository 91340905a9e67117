package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/gate"
	"github.com/example/specfirst/internal/core/phase"
	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/ports/secondary"
	"github.com/example/specfirst/internal/scaffold"
)

// WorkflowServiceImpl implements the WorkflowService interface.
// A successful phase run writes exactly twice, in order: the artifact,
// then the ledger record. A crash between the two leaves the phase
// incomplete from the ledger's point of view, which is the safe side.
type WorkflowServiceImpl struct {
	layout    artifact.Layout
	ledger    secondary.Ledger
	gates     *gateRunner
	generator *scaffold.Generator
}

// NewWorkflowService creates a new WorkflowService with injected dependencies.
func NewWorkflowService(layout artifact.Layout, ledger secondary.Ledger) *WorkflowServiceImpl {
	return &WorkflowServiceImpl{
		layout:    layout,
		ledger:    ledger,
		gates:     newGateRunner(layout, ledger),
		generator: scaffold.NewGenerator(),
	}
}

// RunPhase runs one phase for a feature: gates first, execution after.
func (s *WorkflowServiceImpl) RunPhase(ctx context.Context, req primary.RunPhaseRequest) (*primary.RunPhaseResponse, error) {
	// 1. Validate the phase name before touching any state
	p, err := phase.Parse(req.Phase)
	if err != nil {
		return nil, err
	}

	// 2. Run the phase's gate sequence; the first failure short-circuits
	var gatesPassed []string
	for _, name := range gate.SequenceFor(p) {
		result := s.gates.Run(ctx, name, p, req.Feature)
		if !result.Passed {
			return nil, &primary.GateError{
				Phase:       p.String(),
				Feature:     req.Feature,
				Result:      result,
				GatesPassed: gatesPassed,
			}
		}
		gatesPassed = append(gatesPassed, string(name))
	}

	// 3. Dispatch the phase
	var warning string
	if req.Execute != nil {
		if err := req.Execute(ctx, p.String(), req.Feature); err != nil {
			return nil, fmt.Errorf("phase execution failed: %w", err)
		}
	} else if err := s.executeDefault(ctx, p, req.Feature); err != nil {
		var lw *secondary.LedgerWriteError
		if !errors.As(err, &lw) {
			return nil, err
		}
		warning = lw.Error()
	}

	return &primary.RunPhaseResponse{
		Phase:       p.String(),
		Feature:     req.Feature,
		NextPhase:   string(phase.Next(p)),
		GatesPassed: gatesPassed,
		Warning:     warning,
	}, nil
}

// CheckPhase runs only the gate sequence, reporting every result up to
// and including the first failure.
func (s *WorkflowServiceImpl) CheckPhase(ctx context.Context, req primary.CheckPhaseRequest) (*primary.CheckPhaseResponse, error) {
	p, err := phase.Parse(req.Phase)
	if err != nil {
		return nil, err
	}

	response := &primary.CheckPhaseResponse{
		Phase:   p.String(),
		Feature: req.Feature,
		Passed:  true,
	}
	for _, name := range gate.SequenceFor(p) {
		result := s.gates.Run(ctx, name, p, req.Feature)
		response.Results = append(response.Results, result)
		if !result.Passed {
			response.Passed = false
			break
		}
	}
	return response, nil
}

// VerifyCompletion evaluates the phase-completion gate for one phase.
func (s *WorkflowServiceImpl) VerifyCompletion(ctx context.Context, phaseName, feature string) (*gate.Result, error) {
	p, err := phase.Parse(phaseName)
	if err != nil {
		return nil, err
	}
	result := s.gates.Run(ctx, gate.PhaseCompletion, p, feature)
	return &result, nil
}

// executeDefault is the built-in phase executor: finalize the phase's
// artifact on disk, then append the ledger record. An append failure
// comes back as a LedgerWriteError; the artifact is already durable and
// the record can be replayed by re-running the phase.
func (s *WorkflowServiceImpl) executeDefault(ctx context.Context, p phase.Phase, feature string) error {
	recordPath := s.layout.ISCPath(feature)

	if kind, ok := artifact.ProducedBy(p); ok {
		path := s.layout.Path(feature, kind)
		if err := s.finalizeArtifact(feature, p, kind, path); err != nil {
			return err
		}
		recordPath = path
	}

	// Ledger records carry repo-relative paths.
	rel, err := filepath.Rel(s.layout.Root(), recordPath)
	if err != nil {
		rel = recordPath
	}

	if err := s.ledger.Append(ctx, p.String(), feature, rel); err != nil {
		return &secondary.LedgerWriteError{Phase: p.String(), Feature: feature, Err: err}
	}
	return nil
}

// finalizeArtifact ensures the phase's artifact exists with front matter
// declaring it complete. A missing artifact is scaffolded; an existing
// one keeps its body and gets its status finalized.
func (s *WorkflowServiceImpl) finalizeArtifact(feature string, p phase.Phase, kind artifact.Kind, path string) error {
	now := time.Now().UTC()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		content, err := s.generator.Artifact(feature, p, kind, artifact.StatusComplete, now)
		if err != nil {
			return fmt.Errorf("failed to generate %s artifact: %w", kind, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s artifact: %w", kind, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s artifact: %w", kind, err)
	}

	meta, body, err := artifact.ParseMeta(string(raw))
	switch {
	case errors.Is(err, artifact.ErrNoMeta):
		// Hand-written artifact without front matter; wrap it.
		meta = artifact.Meta{Created: now.Format(time.RFC3339)}
		body = string(raw)
	case err != nil:
		return fmt.Errorf("artifact %s front matter is corrupt: %w", path, err)
	}

	meta.Feature = feature
	meta.Phase = p.String()
	meta.Status = artifact.StatusComplete
	if meta.Created == "" {
		meta.Created = now.Format(time.RFC3339)
	}

	content, err := artifact.RenderMeta(meta, body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to finalize %s artifact: %w", kind, err)
	}
	return nil
}

// Ensure WorkflowServiceImpl implements the interface
var _ primary.WorkflowService = (*WorkflowServiceImpl)(nil)
