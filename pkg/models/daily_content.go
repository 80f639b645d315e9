package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyContent is the single persisted cache row per (user, calendar day).
// The text operation owns Narrative/DoList/DontList/CharacterName; the image
// operation owns ImageURL/ImagePrompt/CharacterType/StyleKey/StyleLabel/
// Rationale. Whichever operation runs first creates the row; the other
// merges into it. A populated field is never overwritten with an empty
// value, and a row is never deleted by the application.
type DailyContent struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ContentDate time.Time `json:"content_date"` // calendar date, time part zero

	StarSign      string   `json:"star_sign"`
	Narrative     string   `json:"narrative,omitempty"`
	DoList        []string `json:"do_list,omitempty"`
	DontList      []string `json:"dont_list,omitempty"`
	CharacterName string   `json:"character_name,omitempty"`

	ImageURL      string `json:"image_url,omitempty"`
	ImagePrompt   string `json:"image_prompt,omitempty"`
	CharacterType string `json:"character_type,omitempty"`
	StyleKey      string `json:"style_key,omitempty"`
	StyleLabel    string `json:"style_label,omitempty"`
	Rationale     string `json:"rationale,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// HasText reports whether the text operation has completed for this row.
func (d *DailyContent) HasText() bool {
	return d != nil && d.Narrative != ""
}

// HasImage reports whether the image operation has completed for this row.
func (d *DailyContent) HasImage() bool {
	return d != nil && d.ImageURL != ""
}
