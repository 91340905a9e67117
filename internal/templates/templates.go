// Package templates holds the embedded document templates that scaffold
// renders into artifacts.
package templates

import (
	"embed"
)

//go:embed artifacts/*.tmpl
var artifactTemplates embed.FS

// GetConstitution returns the project constitution template content.
func GetConstitution() (string, error) {
	return read("artifacts/constitution.md.tmpl")
}

// GetProposal returns the proposal template content.
func GetProposal() (string, error) {
	return read("artifacts/proposal.md.tmpl")
}

// GetSpec returns the specification template content.
func GetSpec() (string, error) {
	return read("artifacts/spec.md.tmpl")
}

// GetPlan returns the implementation plan template content.
func GetPlan() (string, error) {
	return read("artifacts/plan.md.tmpl")
}

// GetTasks returns the task breakdown template content.
func GetTasks() (string, error) {
	return read("artifacts/tasks.md.tmpl")
}

// GetISC returns the ideal state criteria tracker template content.
// The stub rows are structurally valid, so a freshly scaffolded tracker
// already passes the release gate's format checks.
func GetISC() (string, error) {
	return read("artifacts/isc.md.tmpl")
}

func read(name string) (string, error) {
	content, err := artifactTemplates.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
