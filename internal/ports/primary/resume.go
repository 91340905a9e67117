package primary

import "context"

// ResumeService defines the primary port for stateless resumption.
// Every answer is derived from ledger queries at call time; a fresh
// process computes exactly what a live one would.
type ResumeService interface {
	// DetectNextPhase returns the first phase in the total order with
	// no ledger record, or empty when every phase is complete.
	DetectNextPhase(ctx context.Context, feature string) (string, error)

	// WorkflowStatus returns every phase mapped to its ledger-existence
	// boolean.
	WorkflowStatus(ctx context.Context, feature string) (map[string]bool, error)

	// History returns the feature's ledger records in chronological order.
	History(ctx context.Context, feature string) ([]HistoryEntry, error)

	// Resume detects the next phase and, unless the workflow is already
	// complete, delegates to the orchestrator for that phase.
	Resume(ctx context.Context, req ResumeRequest) (*ResumeResponse, error)
}

// ResumeRequest contains parameters for resuming a workflow.
type ResumeRequest struct {
	Feature string
	Execute PhaseFunc // nil selects the configured default executor
}

// ResumeResponse contains the result of a resume attempt.
type ResumeResponse struct {
	Feature   string
	Completed bool              // true when no phase was left to run
	Ran       *RunPhaseResponse // set when a phase was dispatched
}

// HistoryEntry is one ledger record at the port boundary.
type HistoryEntry struct {
	Phase        string
	ArtifactPath string
	Timestamp    string
	Ref          string
}
