package gate

import (
	"fmt"
	"strings"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/isc"
	"github.com/example/specfirst/internal/core/phase"
)

// CheckPrerequisite evaluates the prerequisite gate: the project
// constitution must exist before any phase runs. No ledger interaction.
func CheckPrerequisite(constitutionPresent bool, constitutionPath string) Result {
	if constitutionPresent {
		return Pass(Prerequisite)
	}
	return Fail(Prerequisite,
		fmt.Sprintf("constitution not found at %s", constitutionPath),
		"create CONSTITUTION.md with the project principles before running any phase")
}

// CheckArtifacts evaluates the artifact-dependency gate over a presence
// snapshot: every artifact the phase requires must exist on disk. The
// complete missing list is reported in one pass, never just the first.
func CheckArtifacts(p phase.Phase, feature string, present map[artifact.Kind]bool) Result {
	var missing []artifact.Kind
	for _, kind := range artifact.RequiredForPhase(p) {
		if !present[kind] {
			missing = append(missing, kind)
		}
	}
	if len(missing) == 0 {
		return Pass(ArtifactDependency)
	}

	names := make([]string, len(missing))
	for i, kind := range missing {
		names[i] = string(kind)
	}

	resolution := "create CONSTITUTION.md at the project root first"
	if prev := phase.Before(p); prev != phase.None {
		resolution = fmt.Sprintf("run the %s phase first", prev)
	}

	result := Fail(ArtifactDependency,
		fmt.Sprintf("%d required artifact(s) missing for the %s phase of %s: %s",
			len(missing), p, feature, strings.Join(names, ", ")),
		resolution)
	result.MissingArtifacts = missing
	return result
}

// CheckStructure evaluates the structural-format gate over an ideal
// state criteria document. Every violation is collected so one
// fix-and-retry cycle can clear them all.
func CheckStructure(content string) Result {
	violations := isc.Validate(isc.Parse(content))
	if len(violations) == 0 {
		return Pass(StructuralFormat)
	}

	result := Fail(StructuralFormat,
		fmt.Sprintf("ISC document has %d structural violation(s)", len(violations)),
		"fix every listed row, then retry")
	result.Violations = violations
	return result
}

// CompletionContext provides the two-source evidence for the
// phase-completion gate. Populated by the caller with pre-fetched
// ledger and filesystem state.
type CompletionContext struct {
	Phase            phase.Phase
	Feature          string
	RecordExists     bool // a matching ledger record was found
	ArtifactExpected bool // false for phases that produce no artifact
	ArtifactPresent  bool
	ArtifactPath     string
	Meta             artifact.Meta
	MetaErr          error // front matter parse failure, if any
}

// CheckCompletion evaluates the phase-completion gate: a phase counts as
// complete only when the ledger has a record for it AND the artifact's
// front matter declares status complete. Checking both sources keeps a
// stale or hand-edited artifact from masquerading as a finished phase.
func CheckCompletion(ctx CompletionContext) Result {
	if !ctx.RecordExists {
		return Fail(PhaseCompletion,
			fmt.Sprintf("no ledger record for the %s phase of %s", ctx.Phase, ctx.Feature),
			fmt.Sprintf("run the %s phase to completion first", ctx.Phase))
	}
	// Release produces no artifact; for it the ledger is the only source.
	if !ctx.ArtifactExpected {
		return Pass(PhaseCompletion)
	}
	if !ctx.ArtifactPresent {
		return Fail(PhaseCompletion,
			fmt.Sprintf("artifact %s not found although the ledger records the phase", ctx.ArtifactPath),
			fmt.Sprintf("re-run the %s phase to regenerate the artifact", ctx.Phase))
	}
	if ctx.MetaErr != nil {
		return Fail(PhaseCompletion,
			fmt.Sprintf("artifact %s has unreadable front matter: %v", ctx.ArtifactPath, ctx.MetaErr),
			"restore the front matter block or re-run the phase")
	}
	if !ctx.Meta.IsComplete() {
		return Fail(PhaseCompletion,
			fmt.Sprintf("artifact %s declares status %q, want %q",
				ctx.ArtifactPath, ctx.Meta.Status, artifact.StatusComplete),
			fmt.Sprintf("re-run the %s phase to finalize the artifact", ctx.Phase))
	}
	return Pass(PhaseCompletion)
}
