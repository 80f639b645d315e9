package models

import (
	"time"

	"github.com/google/uuid"
)

// User holds the stored facts a daily profile is derived from.
// Birth month/day are the only required inputs for generation; everything
// else refines segment matching.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	BirthMonth *int      `json:"birth_month,omitempty"` // 1-12
	BirthDay   *int      `json:"birth_day,omitempty"`   // 1-31
	Discipline string    `json:"discipline,omitempty"`  // free text, e.g. "product design"
	RoleTitle  string    `json:"role_title,omitempty"`  // free text, e.g. "Senior Engineer"
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasBirthData reports whether the user can be profiled at all.
func (u *User) HasBirthData() bool {
	return u.BirthMonth != nil && u.BirthDay != nil
}
