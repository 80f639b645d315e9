package models

import "github.com/google/uuid"

// Segment type values. A segment is a categorical bucket a profile
// attribute maps into, e.g. (sign, "Leo") or (weekday, "Tuesday").
const (
	SegmentTypeSign       = "sign"
	SegmentTypeElement    = "element"
	SegmentTypeModality   = "modality"
	SegmentTypeWeekday    = "weekday"
	SegmentTypeSeason     = "season"
	SegmentTypeDiscipline = "discipline"
	SegmentTypeRoleLevel  = "role_level"
)

// Segment is immutable reference data mapping a (type, value) pair to an id
// that rules and theme rules bind to.
type Segment struct {
	ID    uuid.UUID `json:"id"`
	Type  string    `json:"type"`
	Value string    `json:"value"`
}

// SegmentKey identifies a segment by its categorical pair.
type SegmentKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
