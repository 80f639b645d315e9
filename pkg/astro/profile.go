// Package astro derives the per-user, per-day profile the rule engine
// consumes. Everything here is a pure function of the stored user facts and
// the supplied date; nothing is cached across days.
package astro

import (
	"fmt"
	"strings"
	"time"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// signWindow is one zodiac date window. Windows are fixed, non-overlapping
// and cover the full year; Capricorn wraps the year boundary (Dec 22-Jan 19).
type signWindow struct {
	name       string
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

// signs is in zodiac order starting at Aries. Element and modality are fixed
// cyclic assignments over this order: four elements repeating every four
// signs, three modalities repeating every three.
var signs = []signWindow{
	{"Aries", time.March, 21, time.April, 19},
	{"Taurus", time.April, 20, time.May, 20},
	{"Gemini", time.May, 21, time.June, 20},
	{"Cancer", time.June, 21, time.July, 22},
	{"Leo", time.July, 23, time.August, 22},
	{"Virgo", time.August, 23, time.September, 22},
	{"Libra", time.September, 23, time.October, 22},
	{"Scorpio", time.October, 23, time.November, 21},
	{"Sagittarius", time.November, 22, time.December, 21},
	{"Capricorn", time.December, 22, time.January, 19},
	{"Aquarius", time.January, 20, time.February, 18},
	{"Pisces", time.February, 19, time.March, 20},
}

var elements = []string{"fire", "earth", "air", "water"}

var modalities = []string{"cardinal", "fixed", "mutable"}

// StarSign returns the zodiac sign for a birth month/day, or an error when
// the pair does not name a real calendar day.
func StarSign(month, day int) (string, error) {
	if month < 1 || month > 12 || day < 1 || day > daysInMonth(time.Month(month)) {
		return "", fmt.Errorf("invalid birth date %d/%d: %w", month, day, apperrors.ErrProfileIncomplete)
	}

	m := time.Month(month)
	for _, s := range signs {
		if s.startMonth == s.endMonth {
			if m == s.startMonth && day >= s.startDay && day <= s.endDay {
				return s.name, nil
			}
			continue
		}
		if (m == s.startMonth && day >= s.startDay) || (m == s.endMonth && day <= s.endDay) {
			return s.name, nil
		}
	}
	// Unreachable: the windows cover every valid calendar day.
	return "", fmt.Errorf("no sign window for %d/%d: %w", month, day, apperrors.ErrProfileIncomplete)
}

// ElementFor returns the classical element for a sign ("" if unknown).
func ElementFor(sign string) string {
	for i, s := range signs {
		if s.name == sign {
			return elements[i%len(elements)]
		}
	}
	return ""
}

// ModalityFor returns the modality for a sign ("" if unknown).
func ModalityFor(sign string) string {
	for i, s := range signs {
		if s.name == sign {
			return modalities[i%len(modalities)]
		}
	}
	return ""
}

// SeasonFor buckets a date into one of four static 3-month seasons. The
// bucketing is northern-hemisphere fixed and deliberately not
// location-adjusted.
func SeasonFor(date time.Time) string {
	switch date.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// ClassifyRoleLevel maps a free-text role title to junior/mid/senior by
// substring. Unknown or empty titles default to mid.
func ClassifyRoleLevel(title string) string {
	t := strings.ToLower(title)
	for _, kw := range []string{"senior", "lead", "director", "head"} {
		if strings.Contains(t, kw) {
			return models.RoleLevelSenior
		}
	}
	for _, kw := range []string{"junior", "associate", "intern"} {
		if strings.Contains(t, kw) {
			return models.RoleLevelJunior
		}
	}
	return models.RoleLevelMid
}

// ResolveProfile computes the full daily profile for a user as of now.
// It fails only when birth data is absent or invalid; that error is surfaced
// to the caller, never retried here.
func ResolveProfile(user *models.User, now time.Time) (*models.UserProfile, error) {
	if user == nil || !user.HasBirthData() {
		return nil, apperrors.ErrProfileIncomplete
	}

	sign, err := StarSign(*user.BirthMonth, *user.BirthDay)
	if err != nil {
		return nil, err
	}

	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	return &models.UserProfile{
		BirthMonth: *user.BirthMonth,
		BirthDay:   *user.BirthDay,
		StarSign:   sign,
		Element:    ElementFor(sign),
		Modality:   ModalityFor(sign),
		Discipline: strings.ToLower(strings.TrimSpace(user.Discipline)),
		RoleLevel:  ClassifyRoleLevel(user.RoleTitle),
		Location:   user.Location,
		Date:       date,
		Weekday:    now.Weekday().String(),
		Season:     SeasonFor(now),
	}, nil
}

// SegmentKeys returns the (type, value) pairs a profile cares about, in a
// stable order. Discipline and role level are included only when present.
func SegmentKeys(p *models.UserProfile) []models.SegmentKey {
	keys := []models.SegmentKey{
		{Type: models.SegmentTypeSign, Value: p.StarSign},
		{Type: models.SegmentTypeElement, Value: p.Element},
		{Type: models.SegmentTypeModality, Value: p.Modality},
		{Type: models.SegmentTypeWeekday, Value: p.Weekday},
		{Type: models.SegmentTypeSeason, Value: p.Season},
	}
	if p.Discipline != "" {
		keys = append(keys, models.SegmentKey{Type: models.SegmentTypeDiscipline, Value: p.Discipline})
	}
	if p.RoleLevel != "" {
		keys = append(keys, models.SegmentKey{Type: models.SegmentTypeRoleLevel, Value: p.RoleLevel})
	}
	return keys
}

func daysInMonth(m time.Month) int {
	switch m {
	case time.February:
		return 29 // leap-day births are valid
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
