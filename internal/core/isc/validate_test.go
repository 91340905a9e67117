package isc

import (
	"strings"
	"testing"
)

func TestValidate_ValidDocument(t *testing.T) {
	violations := Validate(Parse(validDoc))
	if len(violations) != 0 {
		t.Errorf("Validate() = %v, want no violations", violations)
	}
}

func TestValidate_MissingSections(t *testing.T) {
	doc := Parse("## IDEAL\ntext\n\n## ISC TRACKER\n")

	violations := Validate(doc)
	if len(violations) != 2 {
		t.Fatalf("len(violations) = %d, want 2: %v", len(violations), violations)
	}
	for i, wantSection := range []string{SectionAnti, SectionProgress} {
		v := violations[i]
		if v.Rule != RuleMissingSection {
			t.Errorf("violations[%d].Rule = %q, want %q", i, v.Rule, RuleMissingSection)
		}
		if v.Section != wantSection {
			t.Errorf("violations[%d].Section = %q, want %q", i, v.Section, wantSection)
		}
	}
}

func TestValidate_WordCountBounds(t *testing.T) {
	tests := []struct {
		name          string
		criterion     string
		wantViolation bool
	}{
		{
			name:          "seven words rejected",
			criterion:     "The cache stays warm across node restarts",
			wantViolation: true,
		},
		{
			name:          "eight words accepted",
			criterion:     "The cache stays warm across all node restarts",
			wantViolation: false,
		},
		{
			name:          "twelve words accepted",
			criterion:     "The cache stays warm across node restarts without any operator action required",
			wantViolation: false,
		},
		{
			name:          "thirteen words rejected",
			criterion:     "The cache always stays warm across node restarts without any operator action required",
			wantViolation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "## IDEAL\nx\n\n## ISC TRACKER\n| C1 | " + tt.criterion +
				" | pending | - | - |\n\n## ANTI-CRITERIA\n\n## PROGRESS\n"
			violations := Validate(Parse(content))

			if tt.wantViolation {
				if len(violations) != 1 {
					t.Fatalf("len(violations) = %d, want 1: %v", len(violations), violations)
				}
				if violations[0].Rule != RuleWordCount {
					t.Errorf("Rule = %q, want %q", violations[0].Rule, RuleWordCount)
				}
				if violations[0].Row != "C1" {
					t.Errorf("Row = %q, want %q", violations[0].Row, "C1")
				}
			} else if len(violations) != 0 {
				t.Errorf("violations = %v, want none", violations)
			}
		})
	}
}

func TestValidate_WordCountIgnoresAnnotations(t *testing.T) {
	// Three words of real text padded with tags still fails.
	content := `## IDEAL
x

## ISC TRACKER
| C1 | User auth works [P1] [phase:implement] [high] [reviewed] [signed-off] | pending | - | - |

## ANTI-CRITERIA

## PROGRESS
`
	violations := Validate(Parse(content))
	if len(violations) != 1 {
		t.Fatalf("len(violations) = %d, want 1: %v", len(violations), violations)
	}
	v := violations[0]
	if v.Rule != RuleWordCount {
		t.Fatalf("Rule = %q, want %q", v.Rule, RuleWordCount)
	}
	if !strings.Contains(v.Detail, "3 words") {
		t.Errorf("Detail = %q, want mention of the stripped count (3 words)", v.Detail)
	}
}

func TestValidate_BadStatusSymbol(t *testing.T) {
	content := `## IDEAL
x

## ISC TRACKER
| C1 | Failed payments retry three times before landing in review queue | done | - | - |

## ANTI-CRITERIA
| A1 | Customers are never charged twice for one order | maybe | audit |

## PROGRESS
`
	violations := Validate(Parse(content))
	if len(violations) != 2 {
		t.Fatalf("len(violations) = %d, want 2: %v", len(violations), violations)
	}

	if violations[0].Rule != RuleBadStatusSymbol || violations[0].Section != SectionTracker {
		t.Errorf("violations[0] = %+v, want bad-status-symbol in tracker", violations[0])
	}
	if violations[1].Rule != RuleBadStatusSymbol || violations[1].Section != SectionAnti {
		t.Errorf("violations[1] = %+v, want bad-status-symbol in anti-criteria", violations[1])
	}
}

func TestValidate_WrongColumnCount(t *testing.T) {
	content := `## IDEAL
x

## ISC TRACKER
| C1 | Only three cells | pending |

## ANTI-CRITERIA

## PROGRESS
`
	violations := Validate(Parse(content))
	if len(violations) != 1 {
		t.Fatalf("len(violations) = %d, want 1: %v", len(violations), violations)
	}
	v := violations[0]
	if v.Rule != RuleWrongColumnCount {
		t.Errorf("Rule = %q, want %q", v.Rule, RuleWrongColumnCount)
	}
	if v.Row != "C1" {
		t.Errorf("Row = %q, want %q", v.Row, "C1")
	}
	if v.Line != 5 {
		t.Errorf("Line = %d, want 5", v.Line)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	// One document with a missing section, a short row, a bad status,
	// and a short criterion must report every one of them.
	content := `## IDEAL
x

## ISC TRACKER
| C1 | Too short | pending | - | - |
| C2 | Failed payments retry three times before landing in review queue | done | - | - |
| C3 | Only three cells | pending |

## ANTI-CRITERIA
`
	violations := Validate(Parse(content))

	rules := make(map[Rule]int)
	for _, v := range violations {
		rules[v.Rule]++
	}

	if rules[RuleMissingSection] != 1 {
		t.Errorf("missing-section count = %d, want 1", rules[RuleMissingSection])
	}
	if rules[RuleWordCount] != 1 {
		t.Errorf("word-count count = %d, want 1", rules[RuleWordCount])
	}
	if rules[RuleBadStatusSymbol] != 1 {
		t.Errorf("bad-status-symbol count = %d, want 1", rules[RuleBadStatusSymbol])
	}
	if rules[RuleWrongColumnCount] != 1 {
		t.Errorf("wrong-column-count count = %d, want 1", rules[RuleWrongColumnCount])
	}
	if len(violations) != 4 {
		t.Errorf("len(violations) = %d, want 4: %v", len(violations), violations)
	}
}

func TestViolation_String(t *testing.T) {
	tests := []struct {
		name string
		v    Violation
		want string
	}{
		{
			name: "row violation",
			v:    Violation{Rule: RuleWordCount, Row: "C1", Line: 7, Detail: "criterion has 3 words, expected 8-12"},
			want: "line 7 (C1): word-count-out-of-range: criterion has 3 words, expected 8-12",
		},
		{
			name: "document violation",
			v:    Violation{Rule: RuleMissingSection, Detail: `required section "## PROGRESS" not found`},
			want: `missing-section: required section "## PROGRESS" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
