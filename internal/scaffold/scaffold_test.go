package scaffold

import (
	"strings"
	"testing"
	"time"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/isc"
	"github.com/example/specfirst/internal/core/phase"
)

var testNow = time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)

func TestArtifact_FrontMatterRoundTrips(t *testing.T) {
	g := NewGenerator()

	content, err := g.Artifact("payment-retry", phase.Propose, artifact.Proposal, artifact.StatusComplete, testNow)
	if err != nil {
		t.Fatalf("Artifact failed: %v", err)
	}

	meta, body, err := artifact.ParseMeta(content)
	if err != nil {
		t.Fatalf("generated artifact has unreadable front matter: %v", err)
	}
	if meta.Feature != "payment-retry" {
		t.Errorf("expected feature 'payment-retry', got '%s'", meta.Feature)
	}
	if meta.Phase != "propose" {
		t.Errorf("expected phase 'propose', got '%s'", meta.Phase)
	}
	if !meta.IsComplete() {
		t.Errorf("expected complete status, got '%s'", meta.Status)
	}
	if !strings.Contains(body, "# Payment Retry Proposal") {
		t.Errorf("expected titleized heading, got body:\n%s", body)
	}
}

func TestArtifact_EveryProducedKindHasTemplate(t *testing.T) {
	g := NewGenerator()

	for _, p := range phase.All() {
		kind, ok := artifact.ProducedBy(p)
		if !ok {
			continue
		}
		if _, err := g.Artifact("demo", p, kind, artifact.StatusComplete, testNow); err != nil {
			t.Errorf("phase %s kind %s: %v", p, kind, err)
		}
	}
}

func TestArtifact_UnknownKind(t *testing.T) {
	g := NewGenerator()

	if _, err := g.Artifact("demo", phase.Release, artifact.Constitution, artifact.StatusComplete, testNow); err == nil {
		t.Error("expected error for a kind no phase produces")
	}
}

func TestISC_StubPassesStructuralValidation(t *testing.T) {
	g := NewGenerator()

	content, err := g.ISC("payment-retry", testNow)
	if err != nil {
		t.Fatalf("ISC failed: %v", err)
	}

	violations := isc.Validate(isc.Parse(content))
	if len(violations) != 0 {
		t.Errorf("fresh tracker must be structurally valid, got violations: %v", violations)
	}
	if !strings.Contains(content, "2026-02-11") {
		t.Error("expected creation date in progress log")
	}
}

func TestConstitution(t *testing.T) {
	g := NewGenerator()

	content, err := g.Constitution("acme-billing")
	if err != nil {
		t.Fatalf("Constitution failed: %v", err)
	}
	if !strings.Contains(content, "# acme-billing Constitution") {
		t.Errorf("expected project name in heading, got:\n%s", content)
	}
}

func TestTitleize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"payment-retry", "Payment Retry"},
		{"demo", "Demo"},
		{"a-b-c", "A B C"},
		{"export--csv", "Export Csv"},
	}
	for _, tt := range tests {
		if got := Titleize(tt.in); got != tt.want {
			t.Errorf("Titleize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
