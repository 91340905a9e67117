package artifact

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoMeta indicates the document does not start with a YAML fence.
	ErrNoMeta = errors.New("artifact: missing front matter")
	// ErrUnclosedMeta indicates the opening fence was never closed.
	ErrUnclosedMeta = errors.New("artifact: unclosed front matter")
)

// StatusComplete is the front-matter status a finished phase writes.
const StatusComplete = "complete"

// Meta is the YAML front-matter block every generated artifact carries.
// The completion gate trusts it together with the ledger, never alone.
type Meta struct {
	Feature string `yaml:"feature,omitempty"`
	Phase   string `yaml:"phase,omitempty"`
	Status  string `yaml:"status"`
	Created string `yaml:"created,omitempty"`
}

// IsComplete reports whether the artifact declares itself complete.
func (m Meta) IsComplete() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), StatusComplete)
}

// ParseMeta extracts the front-matter block from a document that starts
// with `---` fences and returns the metadata plus the body after the
// closing fence.
func ParseMeta(content string) (Meta, string, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return Meta{}, "", ErrNoMeta
	}
	rest := normalized[4:]
	block, body, found := strings.Cut(rest, "\n---\n")
	if !found {
		if !strings.HasSuffix(rest, "\n---") {
			return Meta{}, "", ErrUnclosedMeta
		}
		block, body = strings.TrimSuffix(rest, "\n---"), ""
	}

	var meta Meta
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return Meta{}, "", fmt.Errorf("artifact: parse front matter: %w", err)
	}
	return meta, body, nil
}

// RenderMeta renders metadata and body into a fenced document.
func RenderMeta(meta Meta, body string) (string, error) {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("artifact: encode front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(data)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String(), nil
}
