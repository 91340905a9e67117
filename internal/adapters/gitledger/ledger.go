// Package gitledger implements the phase ledger on top of a git
// repository. Each record is one commit; the commit message is the
// record encoding and the repository history is the append-only store.
package gitledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/example/specfirst/internal/ports/secondary"
)

// ErrNotRepo is returned when the configured path is not a git repository.
var ErrNotRepo = errors.New("gitledger: not a git repository")

// subjectPattern extracts phase and feature from a record's first line.
var subjectPattern = regexp.MustCompile(`^SpecFirst: (\S+) phase complete for (.+)$`)

// Ledger implements secondary.Ledger using git commits as records.
type Ledger struct {
	repoRoot string
}

// New creates a ledger rooted at the given repository path.
func New(repoRoot string) (*Ledger, error) {
	l := &Ledger{repoRoot: repoRoot}
	if err := l.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRepo, repoRoot)
	}
	return l, nil
}

// recordSubject is the first line of a record and the literal substring
// existence queries search for.
func recordSubject(phase, feature string) string {
	return fmt.Sprintf("SpecFirst: %s phase complete for %s", phase, feature)
}

// recordMessage renders the full record encoding.
func recordMessage(phase, feature, artifactPath, timestamp string) string {
	return fmt.Sprintf("%s\n\nArtifact: %s\nStatus: complete\nTimestamp: %s",
		recordSubject(phase, feature), artifactPath, timestamp)
}

// Append stages the artifact and commits the record. Staging happens
// first so the ledger never points at content that is not in the store;
// if staging fails no record is written.
func (l *Ledger) Append(ctx context.Context, phase, feature, artifactPath string) error {
	if err := l.run(ctx, "add", "--", artifactPath); err != nil {
		return fmt.Errorf("failed to stage artifact %s: %w", artifactPath, err)
	}

	message := recordMessage(phase, feature, artifactPath, time.Now().UTC().Format(time.RFC3339))

	// Re-running a phase may commit an unchanged artifact. The record
	// still has to land, so empty commits are allowed.
	if err := l.run(ctx, "commit", "--allow-empty", "-m", message); err != nil {
		return fmt.Errorf("failed to append ledger record: %w", err)
	}

	return nil
}

// Exists reports whether at least one record matches (phase, feature).
// Per the record encoding this is a literal substring search over
// commit messages.
func (l *Ledger) Exists(ctx context.Context, phase, feature string) (bool, error) {
	if !l.hasCommits(ctx) {
		return false, nil
	}
	output, err := l.output(ctx, "log", "--fixed-strings",
		"--grep", recordSubject(phase, feature), "-n", "1", "--format=%H")
	if err != nil {
		return false, fmt.Errorf("failed to query ledger: %w", err)
	}
	return strings.TrimSpace(output) != "", nil
}

// Latest returns the most recent record for (phase, feature), or nil
// when none exists.
func (l *Ledger) Latest(ctx context.Context, phase, feature string) (*secondary.PhaseRecord, error) {
	records, err := l.query(ctx, recordSubject(phase, feature), false)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Phase == phase && records[i].Feature == feature {
			return &records[i], nil
		}
	}
	return nil, nil
}

// AllFor returns every record for the feature in chronological order.
func (l *Ledger) AllFor(ctx context.Context, feature string) ([]secondary.PhaseRecord, error) {
	records, err := l.query(ctx, "phase complete for "+feature, true)
	if err != nil {
		return nil, err
	}

	// The grep is a substring match, so a feature named "demo" also
	// surfaces "demo-2" commits. Keep only exact matches.
	matched := records[:0]
	for _, record := range records {
		if record.Feature == feature {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// hasCommits reports whether the repository has any history yet.
// git log fails on a repo with no commits; an empty ledger is not an error.
func (l *Ledger) hasCommits(ctx context.Context) bool {
	return l.run(ctx, "rev-parse", "--verify", "HEAD") == nil
}

// query runs a grep over the log and parses every matching record.
// NUL-terminated entries keep multi-line commit bodies unambiguous.
func (l *Ledger) query(ctx context.Context, grep string, chronological bool) ([]secondary.PhaseRecord, error) {
	if !l.hasCommits(ctx) {
		return nil, nil
	}
	args := []string{"log", "-z", "--fixed-strings", "--grep", grep, "--format=%h%n%B"}
	if chronological {
		args = append(args, "--reverse")
	}

	output, err := l.output(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}

	var records []secondary.PhaseRecord
	for _, chunk := range strings.Split(output, "\x00") {
		record, ok := parseRecord(chunk)
		if !ok {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// parseRecord decodes one log entry. Commits whose message does not
// follow the record encoding are not records and are skipped.
func parseRecord(chunk string) (secondary.PhaseRecord, bool) {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return secondary.PhaseRecord{}, false
	}

	lines := strings.Split(chunk, "\n")
	if len(lines) < 2 {
		return secondary.PhaseRecord{}, false
	}

	record := secondary.PhaseRecord{Ref: strings.TrimSpace(lines[0])}

	match := subjectPattern.FindStringSubmatch(strings.TrimSpace(lines[1]))
	if match == nil {
		return secondary.PhaseRecord{}, false
	}
	record.Phase = match[1]
	record.Feature = match[2]

	for _, line := range lines[2:] {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Artifact: "):
			record.ArtifactPath = strings.TrimPrefix(line, "Artifact: ")
		case strings.HasPrefix(line, "Status: "):
			record.Status = strings.TrimPrefix(line, "Status: ")
		case strings.HasPrefix(line, "Timestamp: "):
			record.Timestamp = strings.TrimPrefix(line, "Timestamp: ")
		}
	}

	return record, true
}

// run executes a git command and returns an error if it fails.
func (l *Ledger) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = l.repoRoot
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// output executes a git command and returns its stdout.
func (l *Ledger) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = l.repoRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Ensure Ledger implements the interface
var _ secondary.Ledger = (*Ledger)(nil)
