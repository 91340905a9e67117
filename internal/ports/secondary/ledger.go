package secondary

import (
	"context"
	"fmt"
)

// PhaseRecord is one immutable entry in the commit ledger, marking a
// phase complete for a feature. Identity is (phase, feature); a later
// record for the same pair is a duplicate, not an update.
type PhaseRecord struct {
	Phase        string
	Feature      string
	ArtifactPath string
	Status       string // always "complete"
	Timestamp    string // RFC3339
	Ref          string // backing-store identifier, audit display only
}

// LedgerWriteError reports a failed Append for an artifact that is
// already durable on disk. Callers treat it as a warning rather than a
// failure: the phase ran, and re-running it replays the record.
type LedgerWriteError struct {
	Phase   string
	Feature string
	Err     error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger append failed for %s %s, artifact already persisted: %v", e.Feature, e.Phase, e.Err)
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }

// Ledger defines the secondary port for the append-only phase ledger.
// The ledger is the durable authority for "is phase X done": every
// workflow-state query is derived from it, never from process memory.
type Ledger interface {
	// Append writes a record marking the phase complete. The artifact
	// file is staged into the ledger's durable store first; if staging
	// fails the record is not written, so the ledger never points at
	// unstaged content.
	Append(ctx context.Context, phase, feature, artifactPath string) error

	// Exists reports whether at least one record matches (phase, feature).
	// It is idempotent and side-effect-free: identical ledger content
	// yields identical answers across calls and process restarts.
	Exists(ctx context.Context, phase, feature string) (bool, error)

	// Latest returns the most recent matching record, or nil when none
	// exists. For audit display only, never for control flow.
	Latest(ctx context.Context, phase, feature string) (*PhaseRecord, error)

	// AllFor returns every record for the feature in chronological order.
	AllFor(ctx context.Context, feature string) ([]PhaseRecord, error)
}
