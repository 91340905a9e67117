// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"fmt"

	"github.com/example/specfirst/internal/core/gate"
)

// WorkflowService defines the primary port for phase orchestration.
type WorkflowService interface {
	// RunPhase runs one phase for a feature: validates the phase name,
	// runs the phase's gate sequence in order, and on success invokes
	// the phase execution function. A gate veto is returned as a
	// *GateError so callers can render the structured diagnostics.
	RunPhase(ctx context.Context, req RunPhaseRequest) (*RunPhaseResponse, error)

	// CheckPhase runs only the gate sequence for a phase, without
	// dispatching it. Used by status displays and preflight checks.
	CheckPhase(ctx context.Context, req CheckPhaseRequest) (*CheckPhaseResponse, error)

	// VerifyCompletion evaluates the phase-completion gate for one
	// phase: ledger record plus artifact front matter must agree. This
	// gate sits outside the per-phase sequences; verification tooling
	// calls it directly.
	VerifyCompletion(ctx context.Context, phaseName, feature string) (*gate.Result, error)
}

// PhaseFunc is the externally supplied execution for one phase: it
// generates the phase's artifact and appends the ledger record. The
// orchestrator itself never writes ledger records.
type PhaseFunc func(ctx context.Context, phase, feature string) error

// RunPhaseRequest contains parameters for running a phase.
type RunPhaseRequest struct {
	Phase   string
	Feature string
	Execute PhaseFunc // nil selects the configured default executor
}

// RunPhaseResponse contains the result of a successful phase run.
type RunPhaseResponse struct {
	Phase       string
	Feature     string
	NextPhase   string   // empty when the pipeline is complete
	GatesPassed []string // gate names that passed, in evaluation order
	Warning     string   // non-fatal bookkeeping problem, empty when clean
}

// CheckPhaseRequest contains parameters for a gates-only check.
type CheckPhaseRequest struct {
	Phase   string
	Feature string
}

// CheckPhaseResponse contains the outcome of every gate that ran.
type CheckPhaseResponse struct {
	Phase   string
	Feature string
	Results []gate.Result // in evaluation order; a failure ends the list
	Passed  bool
}

// GateError is returned by RunPhase when a gate vetoes the phase. It
// carries the failing gate's full result plus the gates that had
// already passed, for audit display.
type GateError struct {
	Phase       string
	Feature     string
	Result      gate.Result
	GatesPassed []string
}

// Error implements the error interface.
func (e *GateError) Error() string {
	return fmt.Sprintf("phase %s blocked for %s: %v", e.Phase, e.Feature, e.Result.Error())
}
