package models

import (
	"time"

	"github.com/google/uuid"
)

// Theme is a date-ranged global modifier independent of any individual user,
// e.g. a holiday overlay. Overlapping active themes are expected and all
// contribute mood tags; only the highest-priority theme's snippet is
// surfaced (ties broken by id for determinism).
type Theme struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"` // inclusive
	EndDate   time.Time `json:"end_date"`   // inclusive
	MoodTags  []string  `json:"mood_tags"`
	Snippet   string    `json:"snippet,omitempty"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Override target values for theme rules.
const (
	OverrideTargetStyle     = "style"
	OverrideTargetCharacter = "character"
)

// ThemeRule is a theme's segment-specific weight override, applied after all
// base rules. Target selects which weight map the boosts multiply into;
// there is no cross-map fallback.
type ThemeRule struct {
	ID        uuid.UUID          `json:"id"`
	ThemeID   uuid.UUID          `json:"theme_id"`
	SegmentID uuid.UUID          `json:"segment_id"`
	Target    string             `json:"target"` // "style" or "character"
	Boosts    map[string]float64 `json:"boosts"` // key -> multiplier
}
