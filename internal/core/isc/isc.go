// Package isc contains the pure parsing and validation logic for ISC
// (Ideal State Criteria) documents. This is part of the Functional Core -
// no I/O, only pure functions over document text.
package isc

// Section header names required in every ISC document.
const (
	SectionIdeal    = "IDEAL"
	SectionTracker  = "ISC TRACKER"
	SectionAnti     = "ANTI-CRITERIA"
	SectionProgress = "PROGRESS"
)

// RequiredSections returns the four section headers every document must have.
func RequiredSections() []string {
	return []string{SectionIdeal, SectionTracker, SectionAnti, SectionProgress}
}

// CriterionStatus is the status of a tracker criterion.
type CriterionStatus string

const (
	StatusPending    CriterionStatus = "pending"
	StatusInProgress CriterionStatus = "in-progress"
	StatusVerified   CriterionStatus = "verified"
	StatusFailed     CriterionStatus = "failed"
)

// AntiStatus is the status of an anti-criterion.
type AntiStatus string

const (
	AntiWatching  AntiStatus = "watching"
	AntiAvoided   AntiStatus = "avoided"
	AntiTriggered AntiStatus = "triggered"
)

// Word count bounds for a criterion after annotation stripping.
// The range is inclusive on both ends.
const (
	MinCriterionWords = 8
	MaxCriterionWords = 12
)

// MinCriteria is the smallest acceptable tracker size for the quality gate.
const MinCriteria = 4

// Column minimums for the two tabular sections.
const (
	TrackerColumns = 5 // | id | criterion | status | evidence | verify |
	AntiColumns    = 4 // | id | criterion | status | verify |
)

// Criterion is one tracker row: a binary-testable statement of desired
// end state with its verification status.
type Criterion struct {
	ID       string
	Text     string // criterion text with annotations stripped
	RawText  string // criterion cell as written
	Status   CriterionStatus
	Evidence string
	Verify   string
	Phase    string // optional phase tag parsed from a [phase:...] annotation
	Words    int    // word count of Text
	Line     int    // 1-based line number in the source document
}

// AntiCriterion is one anti-criteria row: an outcome the feature must avoid.
type AntiCriterion struct {
	ID     string
	Text   string
	Status AntiStatus
	Verify string
	Line   int
}

// Row is a raw parsed table row, kept for validation diagnostics.
type Row struct {
	Line  int
	Cells []string
}

// Document is the structured intermediate representation of an ISC
// document: sections found, typed rows, and the raw rows they came from.
type Document struct {
	Sections     map[string]bool // section name -> header present
	Criteria     []Criterion
	AntiCriteria []AntiCriterion
	TrackerRows  []Row // raw tracker data rows, header/separator excluded
	AntiRows     []Row // raw anti-criteria data rows
}

// HasSection reports whether the named section header was found.
func (d *Document) HasSection(name string) bool {
	return d.Sections[name]
}

// MissingSections returns the required section headers not present,
// in canonical order.
func (d *Document) MissingSections() []string {
	var missing []string
	for _, s := range RequiredSections() {
		if !d.Sections[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

// trackerStatuses maps accepted tracker status tokens (canonical words
// plus the glyph aliases used in rendered documents) to their canonical
// status.
var trackerStatuses = map[string]CriterionStatus{
	"pending":     StatusPending,
	"⬜":           StatusPending,
	"in-progress": StatusInProgress,
	"in_progress": StatusInProgress,
	"🔄":           StatusInProgress,
	"verified":    StatusVerified,
	"✅":           StatusVerified,
	"failed":      StatusFailed,
	"❌":           StatusFailed,
}

// antiStatuses maps accepted anti-criterion status tokens to their
// canonical status. The glyph sets are resolved per section, so ✅ means
// "avoided" here and "verified" in the tracker.
var antiStatuses = map[string]AntiStatus{
	"watching":  AntiWatching,
	"👀":         AntiWatching,
	"avoided":   AntiAvoided,
	"✅":         AntiAvoided,
	"triggered": AntiTriggered,
	"🚨":         AntiTriggered,
}

// ParseCriterionStatus resolves a tracker status token.
func ParseCriterionStatus(token string) (CriterionStatus, bool) {
	s, ok := trackerStatuses[normalizeToken(token)]
	return s, ok
}

// ParseAntiStatus resolves an anti-criterion status token.
func ParseAntiStatus(token string) (AntiStatus, bool) {
	s, ok := antiStatuses[normalizeToken(token)]
	return s, ok
}
