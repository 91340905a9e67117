package app

import (
	"context"
	"fmt"
	"os"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/gate"
	"github.com/example/specfirst/internal/core/phase"
	"github.com/example/specfirst/internal/ports/secondary"
)

// gateRunner gathers the filesystem and ledger snapshots a gate needs
// and delegates the decision to the pure checks in core. An I/O failure
// while gathering becomes a failed result, never a swallowed error and
// never a thrown one.
type gateRunner struct {
	layout artifact.Layout
	ledger secondary.Ledger
}

func newGateRunner(layout artifact.Layout, ledger secondary.Ledger) *gateRunner {
	return &gateRunner{layout: layout, ledger: ledger}
}

// Run evaluates one named gate for a phase and feature.
func (r *gateRunner) Run(ctx context.Context, name gate.Name, p phase.Phase, feature string) gate.Result {
	switch name {
	case gate.Prerequisite:
		return r.prerequisite(feature)
	case gate.ArtifactDependency:
		return r.artifacts(p, feature)
	case gate.StructuralFormat:
		return r.structure(feature)
	case gate.PhaseCompletion:
		return r.completion(ctx, p, feature)
	}
	return gate.ExecutionFailure(name, fmt.Errorf("unknown gate %q", name))
}

func (r *gateRunner) prerequisite(feature string) gate.Result {
	path := r.layout.Path(feature, artifact.Constitution)
	present, err := fileExists(path)
	if err != nil {
		return gate.ExecutionFailure(gate.Prerequisite, err)
	}
	return gate.CheckPrerequisite(present, path)
}

func (r *gateRunner) artifacts(p phase.Phase, feature string) gate.Result {
	present := make(map[artifact.Kind]bool)
	for _, kind := range artifact.RequiredForPhase(p) {
		ok, err := fileExists(r.layout.Path(feature, kind))
		if err != nil {
			return gate.ExecutionFailure(gate.ArtifactDependency, err)
		}
		present[kind] = ok
	}
	return gate.CheckArtifacts(p, feature, present)
}

func (r *gateRunner) structure(feature string) gate.Result {
	path := r.layout.ISCPath(feature)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// An absent tracker is an expected validation failure, not a crash.
		return gate.Fail(gate.StructuralFormat,
			fmt.Sprintf("ISC document not found at %s", path),
			"create isc.md with the four required sections, then retry")
	}
	if err != nil {
		return gate.ExecutionFailure(gate.StructuralFormat, err)
	}
	return gate.CheckStructure(string(content))
}

func (r *gateRunner) completion(ctx context.Context, p phase.Phase, feature string) gate.Result {
	exists, err := r.ledger.Exists(ctx, p.String(), feature)
	if err != nil {
		return gate.ExecutionFailure(gate.PhaseCompletion, err)
	}

	cctx := gate.CompletionContext{
		Phase:        p,
		Feature:      feature,
		RecordExists: exists,
	}

	kind, producesArtifact := artifact.ProducedBy(p)
	cctx.ArtifactExpected = producesArtifact
	if !producesArtifact {
		return gate.CheckCompletion(cctx)
	}

	cctx.ArtifactPath = r.layout.Path(feature, kind)
	present, err := fileExists(cctx.ArtifactPath)
	if err != nil {
		return gate.ExecutionFailure(gate.PhaseCompletion, err)
	}
	cctx.ArtifactPresent = present

	if present {
		content, err := os.ReadFile(cctx.ArtifactPath)
		if err != nil {
			return gate.ExecutionFailure(gate.PhaseCompletion, err)
		}
		cctx.Meta, _, cctx.MetaErr = artifact.ParseMeta(string(content))
	}

	return gate.CheckCompletion(cctx)
}

// fileExists reports presence without treating absence as an error.
func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
