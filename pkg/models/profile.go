package models

import "time"

// Role level values classified from a user's free-text role title.
const (
	RoleLevelJunior = "junior"
	RoleLevelMid    = "mid"
	RoleLevelSenior = "senior"
)

// UserProfile is the per-user, per-day derived profile the rule engine
// resolves segments from. It is recomputed on every request and never
// persisted; Date records the day it was computed for.
type UserProfile struct {
	BirthMonth int       `json:"birth_month"`
	BirthDay   int       `json:"birth_day"`
	StarSign   string    `json:"star_sign"`
	Element    string    `json:"element"`
	Modality   string    `json:"modality"`
	Discipline string    `json:"discipline,omitempty"`
	RoleLevel  string    `json:"role_level"`
	Location   string    `json:"location,omitempty"`
	Date       time.Time `json:"date"`
	Weekday    string    `json:"weekday"`
	Season     string    `json:"season"`
}
