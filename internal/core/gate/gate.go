// Package gate contains the pure decision logic for phase gates.
// This is part of the Functional Core - no I/O, only pure functions.
// Gates evaluate snapshots of filesystem and ledger state gathered by
// the application layer; expected validation failures are returned as
// Result values, never as errors.
package gate

import (
	"fmt"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/isc"
	"github.com/example/specfirst/internal/core/phase"
)

// Name identifies one of the gate types.
type Name string

const (
	// Prerequisite checks that the project constitution exists.
	Prerequisite Name = "prerequisite"
	// ArtifactDependency checks that every upstream artifact a phase
	// needs is present on disk.
	ArtifactDependency Name = "artifact-dependency"
	// StructuralFormat checks the ideal state criteria document shape.
	StructuralFormat Name = "structural-format"
	// PhaseCompletion checks that a phase finished: ledger record plus
	// artifact front matter agreeing on completion.
	PhaseCompletion Name = "phase-completion"
)

// Result is the outcome of one gate evaluation. Gates always return a
// Result so the orchestrator can aggregate which gates passed for audit;
// a failed Result carries the reason and an actionable resolution.
type Result struct {
	Gate       Name
	Passed     bool
	Reason     string // why the gate failed, empty on pass
	Resolution string // what the caller should do about it, empty on pass

	// Structured diagnostics, populated by the gate they belong to.
	MissingArtifacts []artifact.Kind // artifact-dependency failures
	Violations       []isc.Violation // structural-format failures
}

// Error returns the result as an error if the gate failed, nil otherwise.
func (r Result) Error() error {
	if r.Passed {
		return nil
	}
	if r.Resolution != "" {
		return fmt.Errorf("%s gate failed: %s (%s)", r.Gate, r.Reason, r.Resolution)
	}
	return fmt.Errorf("%s gate failed: %s", r.Gate, r.Reason)
}

// Pass returns a passing result for the named gate.
func Pass(name Name) Result {
	return Result{Gate: name, Passed: true}
}

// Fail returns a failing result with a reason and resolution.
func Fail(name Name, reason, resolution string) Result {
	return Result{Gate: name, Reason: reason, Resolution: resolution}
}

// ExecutionFailure converts an error raised while evaluating a gate into
// a failed result. The gate did not say no; it crashed. The distinction
// is kept in the reason text so diagnostics stay honest, but callers
// handle both the same way.
func ExecutionFailure(name Name, err error) Result {
	return Result{
		Gate:       name,
		Reason:     fmt.Sprintf("gate execution failed: %v", err),
		Resolution: "fix the underlying I/O problem and retry",
	}
}

// SequenceFor returns the gates that must pass, in order, before the
// given phase may run. The first failing gate short-circuits the rest.
func SequenceFor(p phase.Phase) []Name {
	switch p {
	case phase.Propose:
		return []Name{Prerequisite}
	case phase.Specify, phase.Plan, phase.Implement:
		return []Name{Prerequisite, ArtifactDependency}
	case phase.Release:
		return []Name{Prerequisite, ArtifactDependency, StructuralFormat}
	}
	return nil
}
