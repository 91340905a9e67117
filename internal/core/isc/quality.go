package isc

import (
	"fmt"
	"strings"
)

// actionVerbs are leading words that indicate a criterion describes work
// to perform instead of a state the system should reach. Criteria must
// be written as observable end states.
var actionVerbs = map[string]bool{
	"add":       true,
	"build":     true,
	"change":    true,
	"create":    true,
	"delete":    true,
	"deploy":    true,
	"fix":       true,
	"implement": true,
	"improve":   true,
	"install":   true,
	"integrate": true,
	"make":      true,
	"migrate":   true,
	"refactor":  true,
	"remove":    true,
	"rename":    true,
	"rewrite":   true,
	"setup":     true,
	"test":      true,
	"update":    true,
	"upgrade":   true,
	"write":     true,
}

// vagueQualifiers are words too imprecise to verify. A criterion that
// needs one usually hides a measurable bound that should be stated
// outright.
var vagueQualifiers = map[string]bool{
	"adequately":    true,
	"appropriately": true,
	"better":        true,
	"correctly":     true,
	"efficiently":   true,
	"good":          true,
	"nicely":        true,
	"properly":      true,
	"reasonably":    true,
	"robust":        true,
	"seamlessly":    true,
	"well":          true,
}

// Check names one quality gate check.
type Check string

const (
	CheckMinimumCount    Check = "minimum-count"
	CheckWordCount       Check = "word-count"
	CheckStateNotAction  Check = "state-not-action"
	CheckNoVagueWording  Check = "no-vague-wording"
	CheckHasAntiCriteria Check = "has-anti-criteria"
)

// CheckResult is the outcome of a single quality check.
type CheckResult struct {
	Check  Check
	Passed bool
	Detail string // populated on failure, names the offending rows
}

// QualityReport aggregates the quality checks over an ISC document.
// All five checks always run so a failing document reports everything
// wrong with it in one pass.
type QualityReport struct {
	Checks []CheckResult
}

// Passed reports whether every quality check succeeded.
func (r QualityReport) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failures returns the checks that did not pass.
func (r QualityReport) Failures() []CheckResult {
	var failed []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// AssessQuality runs the quality checks over a parsed document. Quality
// is judged on the criteria themselves, not the document structure;
// callers gate on Validate first so malformed rows never reach here.
func AssessQuality(doc *Document) QualityReport {
	return QualityReport{
		Checks: []CheckResult{
			checkMinimumCount(doc),
			checkWordCounts(doc),
			checkStateNotAction(doc),
			checkNoVagueWording(doc),
			checkHasAntiCriteria(doc),
		},
	}
}

func checkMinimumCount(doc *Document) CheckResult {
	n := len(doc.Criteria)
	if n >= MinCriteria {
		return CheckResult{Check: CheckMinimumCount, Passed: true}
	}
	return CheckResult{
		Check:  CheckMinimumCount,
		Detail: fmt.Sprintf("found %d criteria, need at least %d", n, MinCriteria),
	}
}

func checkWordCounts(doc *Document) CheckResult {
	var offenders []string
	for _, c := range doc.Criteria {
		if c.Words < MinCriterionWords || c.Words > MaxCriterionWords {
			offenders = append(offenders, fmt.Sprintf("%s (%d words)", c.ID, c.Words))
		}
	}
	if len(offenders) == 0 {
		return CheckResult{Check: CheckWordCount, Passed: true}
	}
	return CheckResult{
		Check: CheckWordCount,
		Detail: fmt.Sprintf("criteria outside %d-%d words: %s",
			MinCriterionWords, MaxCriterionWords, strings.Join(offenders, ", ")),
	}
}

func checkStateNotAction(doc *Document) CheckResult {
	var offenders []string
	for _, c := range doc.Criteria {
		if word := firstWord(c.Text); actionVerbs[word] {
			offenders = append(offenders, fmt.Sprintf("%s (starts with %q)", c.ID, word))
		}
	}
	if len(offenders) == 0 {
		return CheckResult{Check: CheckStateNotAction, Passed: true}
	}
	return CheckResult{
		Check:  CheckStateNotAction,
		Detail: "criteria phrased as actions instead of states: " + strings.Join(offenders, ", "),
	}
}

func checkNoVagueWording(doc *Document) CheckResult {
	var offenders []string
	for _, c := range doc.Criteria {
		for _, word := range strings.Fields(strings.ToLower(c.Text)) {
			word = strings.Trim(word, ".,;:!?\"'()")
			if vagueQualifiers[word] {
				offenders = append(offenders, fmt.Sprintf("%s (%q)", c.ID, word))
				break
			}
		}
	}
	if len(offenders) == 0 {
		return CheckResult{Check: CheckNoVagueWording, Passed: true}
	}
	return CheckResult{
		Check:  CheckNoVagueWording,
		Detail: "criteria with unverifiable qualifiers: " + strings.Join(offenders, ", "),
	}
}

func checkHasAntiCriteria(doc *Document) CheckResult {
	if len(doc.AntiCriteria) > 0 {
		return CheckResult{Check: CheckHasAntiCriteria, Passed: true}
	}
	return CheckResult{
		Check:  CheckHasAntiCriteria,
		Detail: "no anti-criteria defined; at least one failure mode must be tracked",
	}
}

func firstWord(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,;:!?\"'()")
}
