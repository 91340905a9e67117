package gate

import (
	"errors"
	"strings"
	"testing"

	"github.com/example/specfirst/internal/core/phase"
)

func TestSequenceFor(t *testing.T) {
	tests := []struct {
		phase phase.Phase
		want  []Name
	}{
		{phase: phase.Propose, want: []Name{Prerequisite}},
		{phase: phase.Specify, want: []Name{Prerequisite, ArtifactDependency}},
		{phase: phase.Plan, want: []Name{Prerequisite, ArtifactDependency}},
		{phase: phase.Implement, want: []Name{Prerequisite, ArtifactDependency}},
		{phase: phase.Release, want: []Name{Prerequisite, ArtifactDependency, StructuralFormat}},
		{phase: phase.None, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			got := SequenceFor(tt.phase)
			if len(got) != len(tt.want) {
				t.Fatalf("SequenceFor(%s) = %v, want %v", tt.phase, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SequenceFor(%s)[%d] = %q, want %q", tt.phase, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResult_Error(t *testing.T) {
	if err := Pass(Prerequisite).Error(); err != nil {
		t.Errorf("Pass().Error() = %v, want nil", err)
	}

	err := Fail(Prerequisite, "constitution not found at /p/CONSTITUTION.md",
		"create CONSTITUTION.md first").Error()
	if err == nil {
		t.Fatal("Fail().Error() = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "prerequisite gate failed") {
		t.Errorf("Error() = %q, want gate name in message", msg)
	}
	if !strings.Contains(msg, "create CONSTITUTION.md first") {
		t.Errorf("Error() = %q, want resolution in message", msg)
	}
}

func TestExecutionFailure(t *testing.T) {
	result := ExecutionFailure(ArtifactDependency, errors.New("permission denied"))

	if result.Passed {
		t.Error("Passed = true, want false")
	}
	if result.Gate != ArtifactDependency {
		t.Errorf("Gate = %q, want %q", result.Gate, ArtifactDependency)
	}
	if !strings.Contains(result.Reason, "gate execution failed") {
		t.Errorf("Reason = %q, want the crash/veto distinction preserved", result.Reason)
	}
	if !strings.Contains(result.Reason, "permission denied") {
		t.Errorf("Reason = %q, want the underlying error text", result.Reason)
	}
}
