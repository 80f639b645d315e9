package models

import "github.com/google/uuid"

// Style is a catalog entry for a selectable visual treatment.
type Style struct {
	ID     uuid.UUID `json:"id"`
	Key    string    `json:"key"`    // stable key referenced by rule multipliers
	Label  string    `json:"label"`  // human-readable, used in image prompts
	Family string    `json:"family"` // loose grouping, e.g. "painterly"
	Active bool      `json:"active"`
}
