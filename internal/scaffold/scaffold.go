// Package scaffold renders artifact documents from the embedded
// templates. It produces strings only; writing them to disk is the
// caller's job.
package scaffold

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/core/phase"
	"github.com/example/specfirst/internal/templates"
)

// Data is the render context available to every document template.
type Data struct {
	Feature string // feature name as given, e.g. "payment-retry"
	Title   string // humanized feature name, e.g. "Payment Retry"
	Project string // project name, constitution only
	Date    string // YYYY-MM-DD
}

// Generator renders artifact documents.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Artifact renders a phase artifact: the kind's template body wrapped in
// front matter carrying the feature, phase, and status.
func (g *Generator) Artifact(feature string, p phase.Phase, kind artifact.Kind, status string, now time.Time) (string, error) {
	source, err := templateFor(kind)
	if err != nil {
		return "", err
	}

	body, err := g.render(string(kind), source, Data{
		Feature: feature,
		Title:   Titleize(feature),
		Date:    now.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}

	meta := artifact.Meta{
		Feature: feature,
		Phase:   p.String(),
		Status:  status,
		Created: now.Format(time.RFC3339),
	}
	return artifact.RenderMeta(meta, body)
}

// ISC renders a fresh ideal state criteria tracker for a feature.
// Trackers carry no front matter; their structure is their contract.
func (g *Generator) ISC(feature string, now time.Time) (string, error) {
	source, err := templates.GetISC()
	if err != nil {
		return "", err
	}
	return g.render("isc", source, Data{
		Feature: feature,
		Title:   Titleize(feature),
		Date:    now.Format("2006-01-02"),
	})
}

// Constitution renders the project-level constitution document.
func (g *Generator) Constitution(project string) (string, error) {
	source, err := templates.GetConstitution()
	if err != nil {
		return "", err
	}
	return g.render("constitution", source, Data{Project: project})
}

func (g *Generator) render(name, source string, data Data) (string, error) {
	tmpl, err := template.New(name).Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", name, err)
	}
	return buf.String(), nil
}

func templateFor(kind artifact.Kind) (string, error) {
	switch kind {
	case artifact.Proposal:
		return templates.GetProposal()
	case artifact.Spec:
		return templates.GetSpec()
	case artifact.Plan:
		return templates.GetPlan()
	case artifact.Tasks:
		return templates.GetTasks()
	}
	return "", fmt.Errorf("no template for artifact kind %q", kind)
}

// Titleize converts a kebab-case feature name into a display title.
func Titleize(feature string) string {
	var words []string
	for _, word := range strings.Split(feature, "-") {
		if word == "" {
			continue
		}
		words = append(words, strings.ToUpper(word[:1])+word[1:])
	}
	return strings.Join(words, " ")
}
