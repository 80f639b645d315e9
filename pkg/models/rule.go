package models

import (
	"time"

	"github.com/google/uuid"
)

// Ruleset is a named, versioned collection of rules. Exactly one ruleset is
// active at a time; rules outside the active ruleset are ignored entirely.
type Ruleset struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Rule is a weighted modifier bound to one segment. When a user's resolved
// segments include the rule's segment, its multipliers are applied to the
// style and character-type weight maps and its tags are collected.
type Rule struct {
	ID               uuid.UUID          `json:"id"`
	RulesetID        uuid.UUID          `json:"ruleset_id"`
	SegmentID        uuid.UUID          `json:"segment_id"`
	StyleWeights     map[string]float64 `json:"style_weights"`     // style key -> multiplier
	CharacterWeights map[string]float64 `json:"character_weights"` // character type -> multiplier
	Tags             []string           `json:"tags"`
	Priority         int                `json:"priority"` // higher applies first
	Active           bool               `json:"active"`
	CreatedAt        time.Time          `json:"created_at"`
}
