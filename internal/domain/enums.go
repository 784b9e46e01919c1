package domain

import "strings"

// RelationType selects which date of the predecessor anchors which date of
// the dependent task.
type RelationType string

const (
	FinishStart  RelationType = "FINISH_START"
	FinishFinish RelationType = "FINISH_FINISH"
	StartStart   RelationType = "START_START"
	StartFinish  RelationType = "START_FINISH"
)

// DefaultRelationType is used when a task carries no relation type.
const DefaultRelationType = FinishStart

// ValidRelationTypes is the canonical set of accepted relation type strings.
var ValidRelationTypes = map[RelationType]bool{
	FinishStart:  true,
	FinishFinish: true,
	StartStart:   true,
	StartFinish:  true,
}

// ParseRelationType accepts the canonical names case-insensitively, with
// either '_' or '-' as separator ("finish-start", "START_START").
// The second return value is false for unknown input, in which case
// DefaultRelationType is returned.
func ParseRelationType(s string) (RelationType, bool) {
	norm := RelationType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if ValidRelationTypes[norm] {
		return norm, true
	}
	return DefaultRelationType, false
}

// OrDefault returns r, or DefaultRelationType when r is empty.
func (r RelationType) OrDefault() RelationType {
	if r == "" {
		return DefaultRelationType
	}
	return r
}

// AnchorsOnFinish reports whether the predecessor's finish date is the anchor.
func (r RelationType) AnchorsOnFinish() bool {
	r = r.OrDefault()
	return r == FinishStart || r == FinishFinish
}

// ConstrainsStart reports whether the dependent task's start date is the
// constrained date.
func (r RelationType) ConstrainsStart() bool {
	r = r.OrDefault()
	return r == FinishStart || r == StartStart
}

var relationShortNames = map[RelationType]string{
	FinishStart:  "FS",
	FinishFinish: "FF",
	StartStart:   "SS",
	StartFinish:  "SF",
}

// Short returns the two-letter abbreviation used in listings ("FS", "SS").
func (r RelationType) Short() string {
	if s, ok := relationShortNames[r.OrDefault()]; ok {
		return s
	}
	return string(r)
}
