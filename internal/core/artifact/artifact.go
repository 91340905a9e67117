// Package artifact contains the pure business logic for artifact layout.
// This is part of the Functional Core - no I/O, only pure functions.
package artifact

import (
	"fmt"
	"path/filepath"

	"github.com/example/specfirst/internal/core/phase"
)

// Kind identifies one of the durable artifacts a feature produces.
type Kind string

const (
	// Constitution is the project-level governance document.
	Constitution Kind = "constitution"
	// Proposal is the feature proposal produced by the propose phase.
	Proposal Kind = "proposal"
	// Spec is the full specification produced by the specify phase.
	Spec Kind = "spec"
	// Plan is the implementation plan produced by the plan phase.
	Plan Kind = "plan"
	// Tasks is the task breakdown produced by the implement phase.
	Tasks Kind = "tasks"
)

// ConstitutionFile is the project-level constitution filename.
const ConstitutionFile = "CONSTITUTION.md"

// ISCFile is the per-feature ideal state criteria tracker filename.
// It is not an artifact kind: release gates on its structure, not on
// its presence in the dependency chain.
const ISCFile = "isc.md"

// SpecsDir is the default directory holding per-feature artifacts.
const SpecsDir = "specs"

// AllKinds returns every artifact kind in pipeline order.
func AllKinds() []Kind {
	return []Kind{Constitution, Proposal, Spec, Plan, Tasks}
}

// Layout maps (feature name, artifact kind) to canonical file paths.
// It is a pure value; the root and specs dir are fixed at construction.
type Layout struct {
	root     string
	specsDir string
}

// NewLayout creates a layout rooted at the given project directory.
// An empty specsDir falls back to the default "specs".
func NewLayout(root, specsDir string) Layout {
	if specsDir == "" {
		specsDir = SpecsDir
	}
	return Layout{root: root, specsDir: specsDir}
}

// Root returns the project root directory.
func (l Layout) Root() string {
	return l.root
}

// Path returns the canonical path for a feature's artifact of the given kind.
// The constitution is project-level; every other kind lives under the
// feature's directory in the specs dir.
func (l Layout) Path(feature string, kind Kind) string {
	if kind == Constitution {
		return filepath.Join(l.root, ConstitutionFile)
	}
	return filepath.Join(l.root, l.specsDir, feature, string(kind)+".md")
}

// FeatureDir returns the directory holding a feature's artifacts.
func (l Layout) FeatureDir(feature string) string {
	return filepath.Join(l.root, l.specsDir, feature)
}

// ISCPath returns the path of a feature's ideal state criteria tracker.
func (l Layout) ISCPath(feature string) string {
	return filepath.Join(l.root, l.specsDir, feature, ISCFile)
}

// Locations returns the full artifact kind to path mapping for a feature.
func (l Layout) Locations(feature string) map[Kind]string {
	out := make(map[Kind]string, len(AllKinds()))
	for _, kind := range AllKinds() {
		out[kind] = l.Path(feature, kind)
	}
	return out
}

// RequiredForPhase returns the fixed required-artifact-set for a phase.
// Each phase requires the constitution plus every artifact produced by
// the phases before it:
//
//	propose:   constitution
//	specify:   constitution, proposal
//	plan:      constitution, proposal, spec
//	implement: constitution, proposal, spec, plan
//	release:   constitution, proposal, spec, plan, tasks
func RequiredForPhase(p phase.Phase) []Kind {
	switch p {
	case phase.Propose:
		return []Kind{Constitution}
	case phase.Specify:
		return []Kind{Constitution, Proposal}
	case phase.Plan:
		return []Kind{Constitution, Proposal, Spec}
	case phase.Implement:
		return []Kind{Constitution, Proposal, Spec, Plan}
	case phase.Release:
		return []Kind{Constitution, Proposal, Spec, Plan, Tasks}
	}
	return nil
}

// ProducedBy returns the artifact kind a phase produces on success.
// Release produces no new artifact; it finalizes the feature.
func ProducedBy(p phase.Phase) (Kind, bool) {
	switch p {
	case phase.Propose:
		return Proposal, true
	case phase.Specify:
		return Spec, true
	case phase.Plan:
		return Plan, true
	case phase.Implement:
		return Tasks, true
	}
	return "", false
}

// ParseKind validates an artifact kind name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case Constitution, Proposal, Spec, Plan, Tasks:
		return Kind(name), nil
	}
	return "", fmt.Errorf("invalid artifact kind %q", name)
}
