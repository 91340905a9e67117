// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/specfirst/internal/core/gate"
	"github.com/example/specfirst/internal/core/phase"
	"github.com/example/specfirst/internal/ports/primary"
)

// WorkflowAdapter is a thin adapter that translates CLI operations to
// WorkflowService and ResumeService calls. It depends only on the
// service interfaces, enabling easy testing with mocks.
type WorkflowAdapter struct {
	workflow primary.WorkflowService
	resume   primary.ResumeService
	out      io.Writer
}

// NewWorkflowAdapter creates a new WorkflowAdapter with the given services.
func NewWorkflowAdapter(workflow primary.WorkflowService, resume primary.ResumeService, out io.Writer) *WorkflowAdapter {
	return &WorkflowAdapter{
		workflow: workflow,
		resume:   resume,
		out:      out,
	}
}

// Run executes one phase for a feature. A gate veto renders the
// structured diagnostics before the error is returned, so the process
// exits nonzero with the full picture already printed.
func (a *WorkflowAdapter) Run(ctx context.Context, phaseName, feature string, execute primary.PhaseFunc) error {
	resp, err := a.workflow.RunPhase(ctx, primary.RunPhaseRequest{
		Phase:   phaseName,
		Feature: feature,
		Execute: execute,
	})
	if err != nil {
		var gateErr *primary.GateError
		if errors.As(err, &gateErr) {
			a.renderGateError(gateErr)
		}
		return err
	}

	fmt.Fprintf(a.out, "✓ Phase %s complete for %s\n", resp.Phase, resp.Feature)
	if resp.Warning != "" {
		fmt.Fprintf(a.out, "⚠ %s\n", resp.Warning)
	}
	fmt.Fprintln(a.out)

	if resp.NextPhase == "" {
		fmt.Fprintf(a.out, "Workflow complete. All phases recorded for %s.\n", resp.Feature)
		return nil
	}
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  specfirst run %s %s\n", resp.NextPhase, resp.Feature)
	return nil
}

// Check runs the gate sequence for a phase without dispatching it and
// prints every gate outcome. Returns an error when any gate fails so
// scripted preflight checks get a nonzero exit.
func (a *WorkflowAdapter) Check(ctx context.Context, phaseName, feature string) error {
	resp, err := a.workflow.CheckPhase(ctx, primary.CheckPhaseRequest{
		Phase:   phaseName,
		Feature: feature,
	})
	if err != nil {
		return fmt.Errorf("failed to check phase: %w", err)
	}

	fmt.Fprintf(a.out, "\nGates for phase %s, feature %s:\n\n", resp.Phase, resp.Feature)
	for _, result := range resp.Results {
		if result.Passed {
			fmt.Fprintf(a.out, "  ✓ %s\n", result.Gate)
			continue
		}
		a.renderFailure(result)
	}
	fmt.Fprintln(a.out)

	if !resp.Passed {
		return fmt.Errorf("gate check failed for phase %s", resp.Phase)
	}
	fmt.Fprintln(a.out, "All gates pass. Next steps:")
	fmt.Fprintf(a.out, "  specfirst run %s %s\n", resp.Phase, resp.Feature)
	return nil
}

// Verify evaluates the phase-completion gate: the ledger record and the
// artifact's front matter must agree that the phase finished.
func (a *WorkflowAdapter) Verify(ctx context.Context, phaseName, feature string) error {
	result, err := a.workflow.VerifyCompletion(ctx, phaseName, feature)
	if err != nil {
		return fmt.Errorf("failed to verify phase: %w", err)
	}

	if result.Passed {
		fmt.Fprintf(a.out, "✓ Phase %s verified for %s\n", phaseName, feature)
		return nil
	}
	a.renderFailure(*result)
	return fmt.Errorf("phase %s is not complete for %s", phaseName, feature)
}

// Status prints each phase with its ledger-existence marker and the
// detected next phase.
func (a *WorkflowAdapter) Status(ctx context.Context, feature string) error {
	status, err := a.resume.WorkflowStatus(ctx, feature)
	if err != nil {
		return err
	}
	next, err := a.resume.DetectNextPhase(ctx, feature)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nWorkflow status for %s:\n\n", feature)
	for _, p := range phase.All() {
		mark := "○"
		if status[p.String()] {
			mark = "●"
		}
		marker := ""
		if p.String() == next {
			marker = "  ← next"
		}
		fmt.Fprintf(a.out, "  %s %s%s\n", mark, p, marker)
	}
	fmt.Fprintln(a.out)

	if next == "" {
		fmt.Fprintf(a.out, "All phases complete for %s.\n", feature)
		return nil
	}
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  specfirst run %s %s\n", next, feature)
	return nil
}

// Resume detects the next phase from the ledger and runs it.
func (a *WorkflowAdapter) Resume(ctx context.Context, feature string, execute primary.PhaseFunc) error {
	resp, err := a.resume.Resume(ctx, primary.ResumeRequest{
		Feature: feature,
		Execute: execute,
	})
	if err != nil {
		var gateErr *primary.GateError
		if errors.As(err, &gateErr) {
			a.renderGateError(gateErr)
		}
		return err
	}

	if resp.Completed {
		fmt.Fprintf(a.out, "Workflow already complete for %s. Nothing to resume.\n", resp.Feature)
		return nil
	}

	fmt.Fprintf(a.out, "✓ Resumed %s at phase %s\n", resp.Feature, resp.Ran.Phase)
	if resp.Ran.Warning != "" {
		fmt.Fprintf(a.out, "⚠ %s\n", resp.Ran.Warning)
	}
	fmt.Fprintln(a.out)

	if resp.Ran.NextPhase == "" {
		fmt.Fprintf(a.out, "Workflow complete. All phases recorded for %s.\n", resp.Feature)
		return nil
	}
	fmt.Fprintln(a.out, "Next steps:")
	fmt.Fprintf(a.out, "  specfirst run %s %s\n", resp.Ran.NextPhase, resp.Feature)
	return nil
}

// History prints the feature's ledger records in chronological order.
func (a *WorkflowAdapter) History(ctx context.Context, feature string) error {
	entries, err := a.resume.History(ctx, feature)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No ledger records for %s.\n", feature)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PHASE\tARTIFACT\tTIMESTAMP\tREF")
	fmt.Fprintln(w, "-----\t--------\t---------\t---")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Phase, e.ArtifactPath, e.Timestamp, e.Ref)
	}
	w.Flush()

	return nil
}

func (a *WorkflowAdapter) renderGateError(gateErr *primary.GateError) {
	fmt.Fprintf(a.out, "✗ Phase %s blocked for %s\n\n", gateErr.Phase, gateErr.Feature)
	for _, name := range gateErr.GatesPassed {
		fmt.Fprintf(a.out, "  ✓ %s\n", name)
	}
	a.renderFailure(gateErr.Result)
}

// renderFailure prints one failed gate with its structured diagnostics.
func (a *WorkflowAdapter) renderFailure(result gate.Result) {
	fmt.Fprintf(a.out, "  ✗ %s: %s\n", result.Gate, result.Reason)
	for _, kind := range result.MissingArtifacts {
		fmt.Fprintf(a.out, "      missing: %s\n", kind)
	}
	for _, v := range result.Violations {
		fmt.Fprintf(a.out, "      %s\n", v)
	}
	if result.Resolution != "" {
		fmt.Fprintf(a.out, "\n  Resolution: %s\n", result.Resolution)
	}
}
