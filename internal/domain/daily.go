package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// DailySelection records the problem chosen for one calendar date. At most one
// exists per date and it is never modified.
type DailySelection struct {
	Date      time.Time `json:"date"`
	ProblemID uuid.UUID `json:"problem_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarDate truncates t to midnight of its calendar day in loc and returns
// it as a UTC-anchored date so it compares equal to dates read back from a
// DATE column.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string. Malformed input wraps ErrValidation.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q: expected YYYY-MM-DD", ErrValidation, s)
	}
	return t, nil
}
