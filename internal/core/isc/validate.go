package isc

import "fmt"

// Rule identifies a structural validation rule.
type Rule string

const (
	RuleMissingSection   Rule = "missing-section"
	RuleWrongColumnCount Rule = "wrong-column-count"
	RuleBadStatusSymbol  Rule = "bad-status-symbol"
	RuleWordCount        Rule = "word-count-out-of-range"
)

// Violation describes one structural problem in an ISC document.
type Violation struct {
	Rule    Rule
	Section string // section the violation was found in, "" for document level
	Row     string // row id when the row carries one
	Line    int    // 1-based source line, 0 for document-level violations
	Detail  string // human-readable specifics
}

// String renders a violation for error lists and CLI output.
func (v Violation) String() string {
	switch {
	case v.Line > 0 && v.Row != "":
		return fmt.Sprintf("line %d (%s): %s: %s", v.Line, v.Row, v.Rule, v.Detail)
	case v.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", v.Line, v.Rule, v.Detail)
	default:
		return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
	}
}

// Validate checks the structural rules over a parsed document and collects
// every violation rather than stopping at the first: one fix-and-retry
// cycle can resolve all reported issues at once.
func Validate(doc *Document) []Violation {
	var violations []Violation

	for _, name := range doc.MissingSections() {
		violations = append(violations, Violation{
			Rule:    RuleMissingSection,
			Detail:  fmt.Sprintf("required section %q not found", "## "+name),
			Section: name,
		})
	}

	violations = append(violations, validateTrackerRows(doc)...)
	violations = append(violations, validateAntiRows(doc)...)

	return violations
}

func validateTrackerRows(doc *Document) []Violation {
	var violations []Violation

	for _, row := range doc.TrackerRows {
		id := rowID(row)

		if len(row.Cells) < TrackerColumns {
			violations = append(violations, Violation{
				Rule:    RuleWrongColumnCount,
				Section: SectionTracker,
				Row:     id,
				Line:    row.Line,
				Detail:  fmt.Sprintf("got %d columns, need at least %d", len(row.Cells), TrackerColumns),
			})
			continue
		}

		if _, ok := ParseCriterionStatus(row.Cells[2]); !ok {
			violations = append(violations, Violation{
				Rule:    RuleBadStatusSymbol,
				Section: SectionTracker,
				Row:     id,
				Line:    row.Line,
				Detail:  fmt.Sprintf("status %q is not one of pending, in-progress, verified, failed", row.Cells[2]),
			})
		}

		if v, ok := wordCountViolation(row, SectionTracker); ok {
			violations = append(violations, v)
		}
	}

	return violations
}

func validateAntiRows(doc *Document) []Violation {
	var violations []Violation

	for _, row := range doc.AntiRows {
		id := rowID(row)

		if len(row.Cells) < AntiColumns {
			violations = append(violations, Violation{
				Rule:    RuleWrongColumnCount,
				Section: SectionAnti,
				Row:     id,
				Line:    row.Line,
				Detail:  fmt.Sprintf("got %d columns, need at least %d", len(row.Cells), AntiColumns),
			})
			continue
		}

		if _, ok := ParseAntiStatus(row.Cells[2]); !ok {
			violations = append(violations, Violation{
				Rule:    RuleBadStatusSymbol,
				Section: SectionAnti,
				Row:     id,
				Line:    row.Line,
				Detail:  fmt.Sprintf("status %q is not one of watching, avoided, triggered", row.Cells[2]),
			})
		}
	}

	return violations
}

// wordCountViolation checks the [MinCriterionWords, MaxCriterionWords]
// bound on a criterion cell. The bound applies to the text after
// annotation stripping; both ends are inclusive.
func wordCountViolation(row Row, section string) (Violation, bool) {
	words := WordCount(row.Cells[1])
	if words >= MinCriterionWords && words <= MaxCriterionWords {
		return Violation{}, false
	}
	return Violation{
		Rule:    RuleWordCount,
		Section: section,
		Row:     rowID(row),
		Line:    row.Line,
		Detail: fmt.Sprintf("criterion has %d words, expected %d-%d",
			words, MinCriterionWords, MaxCriterionWords),
	}, true
}

func rowID(row Row) string {
	if len(row.Cells) > 0 {
		return row.Cells[0]
	}
	return ""
}
