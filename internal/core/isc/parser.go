package isc

import (
	"regexp"
	"strings"
)

// bracketTag matches bracketed annotations in a criterion cell:
// confidence ([high]), priority ([P1]), and phase ([phase:plan]) tags.
var bracketTag = regexp.MustCompile(`\[[^\]]*\]`)

// phaseTag extracts the phase name from a [phase:...] annotation.
var phaseTag = regexp.MustCompile(`(?i)\[phase:\s*([a-z-]+)\s*\]`)

// verifySuffix matches an inline verification annotation appended to the
// criterion text, e.g. "... verify: run the suite" or "... (verified by CI)".
var verifySuffix = regexp.MustCompile(`(?i)[-–—>\s]*\(?\s*verif(?:y|ied)(?::| by\b).*$`)

// separatorRow matches markdown table separator rows such as |---|:--:|.
var separatorRow = regexp.MustCompile(`^[\s|:-]+$`)

// Parse scans an ISC document into its structured intermediate
// representation. Parsing is lenient: malformed rows are kept as raw rows
// so Validate can report every problem; only well-formed rows become
// typed criteria.
func Parse(content string) *Document {
	doc := &Document{
		Sections: make(map[string]bool),
	}

	section := ""
	for i, line := range strings.Split(content, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if name, ok := sectionHeader(trimmed); ok {
			doc.Sections[name] = true
			section = name
			continue
		}

		if !isTableRow(trimmed) {
			continue
		}

		row := Row{Line: lineNo, Cells: splitCells(trimmed)}
		if isHeaderRow(row) {
			continue
		}

		switch section {
		case SectionTracker:
			doc.TrackerRows = append(doc.TrackerRows, row)
			if c, ok := criterionFromRow(row); ok {
				doc.Criteria = append(doc.Criteria, c)
			}
		case SectionAnti:
			doc.AntiRows = append(doc.AntiRows, row)
			if a, ok := antiFromRow(row); ok {
				doc.AntiCriteria = append(doc.AntiCriteria, a)
			}
		}
	}

	return doc
}

// StripAnnotations removes bracketed tags and inline verification
// suffixes from a criterion cell, returning the bare criterion text.
func StripAnnotations(raw string) string {
	text := bracketTag.ReplaceAllString(raw, " ")
	text = verifySuffix.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// WordCount counts the words of a criterion after annotation stripping.
func WordCount(raw string) int {
	return len(strings.Fields(StripAnnotations(raw)))
}

// sectionHeader reports whether a line is one of the four known section
// headers. Matching tolerates extra words after the name, so
// "## IDEAL STATE" still lands in the IDEAL section.
func sectionHeader(line string) (string, bool) {
	if !strings.HasPrefix(line, "##") {
		return "", false
	}
	title := strings.ToUpper(strings.TrimSpace(strings.TrimLeft(line, "#")))
	for _, name := range RequiredSections() {
		if title == name || strings.HasPrefix(title, name+" ") {
			return name, true
		}
	}
	return "", false
}

func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") && !separatorRow.MatchString(line)
}

// isHeaderRow detects the column-title row of a table by its first cell.
func isHeaderRow(row Row) bool {
	if len(row.Cells) == 0 {
		return false
	}
	first := strings.ToLower(row.Cells[0])
	return first == "id" || first == "#"
}

// splitCells splits a |-delimited row into trimmed cells, dropping the
// empty leading and trailing fragments produced by the outer pipes.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// criterionFromRow converts a raw tracker row into a typed Criterion.
// Rows with too few columns or an unknown status stay raw-only; Validate
// reports them.
func criterionFromRow(row Row) (Criterion, bool) {
	if len(row.Cells) < TrackerColumns {
		return Criterion{}, false
	}
	status, ok := ParseCriterionStatus(row.Cells[2])
	if !ok {
		return Criterion{}, false
	}

	raw := row.Cells[1]
	c := Criterion{
		ID:       row.Cells[0],
		RawText:  raw,
		Text:     StripAnnotations(raw),
		Status:   status,
		Evidence: row.Cells[3],
		Verify:   row.Cells[4],
		Line:     row.Line,
	}
	c.Words = len(strings.Fields(c.Text))
	if m := phaseTag.FindStringSubmatch(raw); m != nil {
		c.Phase = strings.ToLower(m[1])
	}
	return c, true
}

func antiFromRow(row Row) (AntiCriterion, bool) {
	if len(row.Cells) < AntiColumns {
		return AntiCriterion{}, false
	}
	status, ok := ParseAntiStatus(row.Cells[2])
	if !ok {
		return AntiCriterion{}, false
	}
	return AntiCriterion{
		ID:     row.Cells[0],
		Text:   StripAnnotations(row.Cells[1]),
		Status: status,
		Verify: row.Cells[3],
		Line:   row.Line,
	}, true
}

func normalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
