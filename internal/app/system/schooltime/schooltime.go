// Package schooltime classifies activity timestamps as school-time or
// non-school-time. School-time means a weekday school hour outside
// national holidays; evenings, weekends, and holidays count as
// non-school-time.
package schooltime

import "time"

// Default school hours (inclusive start, exclusive end).
const (
	DefaultStartHour = 8
	DefaultEndHour   = 16
)

// Classifier evaluates timestamps against configured school hours, a
// timezone, and a holiday calendar.
type Classifier struct {
	loc       *time.Location
	startHour int
	endHour   int
	holidays  map[string]bool // YYYY-MM-DD
}

// New builds a Classifier. loc may be nil (UTC). Hour bounds outside
// 0..24 or inverted fall back to the defaults. holidays keys are
// YYYY-MM-DD in the classifier's timezone.
func New(loc *time.Location, startHour, endHour int, holidays map[string]bool) *Classifier {
	if loc == nil {
		loc = time.UTC
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		startHour, endHour = DefaultStartHour, DefaultEndHour
	}
	if holidays == nil {
		holidays = map[string]bool{}
	}
	return &Classifier{loc: loc, startHour: startHour, endHour: endHour, holidays: holidays}
}

// IsSchoolDay reports whether the date of t (in the classifier's
// timezone) is a weekday that is not a holiday.
func (c *Classifier) IsSchoolDay(t time.Time) bool {
	local := t.In(c.loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays[local.Format("2006-01-02")]
}

// IsSchoolTime reports whether t falls inside school hours on a school
// day.
func (c *Classifier) IsSchoolTime(t time.Time) bool {
	if !c.IsSchoolDay(t) {
		return false
	}
	h := t.In(c.loc).Hour()
	return h >= c.startHour && h < c.endHour
}
