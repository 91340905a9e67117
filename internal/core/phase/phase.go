// Package phase contains the pure business logic for the five-phase pipeline.
// This is part of the Functional Core - no I/O, only pure functions.
package phase

import (
	"fmt"
	"strings"
)

// Phase represents one stage of the specification pipeline.
type Phase string

const (
	// None is the sentinel for "no phase" (workflow not started, or complete).
	None Phase = ""

	// Propose drafts the initial proposal from an idea.
	Propose Phase = "propose"
	// Specify turns an approved proposal into a full specification.
	Specify Phase = "specify"
	// Plan derives an implementation plan from the specification.
	Plan Phase = "plan"
	// Implement executes the plan and produces the task breakdown.
	Implement Phase = "implement"
	// Release finalizes the feature after all quality checks pass.
	Release Phase = "release"
)

// All returns every phase in execution order.
// The order is the only legal progression; no phase may be skipped.
func All() []Phase {
	return []Phase{Propose, Specify, Plan, Implement, Release}
}

// Parse validates a phase name and returns the corresponding Phase.
// Matching is case-insensitive. Unknown names are an error.
func Parse(name string) (Phase, error) {
	switch Phase(strings.ToLower(strings.TrimSpace(name))) {
	case Propose:
		return Propose, nil
	case Specify:
		return Specify, nil
	case Plan:
		return Plan, nil
	case Implement:
		return Implement, nil
	case Release:
		return Release, nil
	}
	return None, fmt.Errorf("invalid phase %q (valid: propose, specify, plan, implement, release)", name)
}

// IsValid reports whether p is one of the five pipeline phases.
func (p Phase) IsValid() bool {
	switch p {
	case Propose, Specify, Plan, Implement, Release:
		return true
	}
	return false
}

// Index returns the position of p in the total order, or -1 for None
// or an unknown phase.
func (p Phase) Index() int {
	for i, candidate := range All() {
		if candidate == p {
			return i
		}
	}
	return -1
}

// Next returns the phase immediately following p in the total order.
// Release has no successor; Next returns None for it and for any
// phase outside the order.
func Next(p Phase) Phase {
	phases := All()
	idx := p.Index()
	if idx < 0 || idx+1 >= len(phases) {
		return None
	}
	return phases[idx+1]
}

// Before returns the phase immediately preceding p in the total order,
// or None when p is the first phase or outside the order.
func Before(p Phase) Phase {
	idx := p.Index()
	if idx <= 0 {
		return None
	}
	return All()[idx-1]
}

// String returns the phase name, or "none" for the sentinel.
func (p Phase) String() string {
	if p == None {
		return "none"
	}
	return string(p)
}

// Title returns the phase name with the first letter capitalized,
// for display in ledger messages and CLI output.
func (p Phase) Title() string {
	s := p.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
