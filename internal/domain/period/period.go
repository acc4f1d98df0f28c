// Package period maps instants to leaderboard windows. A Period is the
// identity of one concrete window instance, such as one ISO week.
package period

import (
	"fmt"
	"time"

	"github.com/Auroral0810/LaTexia-sub000/internal/domain"
)

// Type names a family of rolling windows.
type Type string

// Supported window types
const (
	AllTime Type = "all"
	Daily   Type = "daily"
	Weekly  Type = "weekly"
	Monthly Type = "monthly"
)

// AllTimeKey is the fixed key of the single all-time window.
const AllTimeKey = "all"

// Types lists every window type in aggregation order.
var Types = []Type{AllTime, Daily, Weekly, Monthly}

// Period is one concrete window: its type and the key of the instance.
type Period struct {
	Type Type
	Key  string
}

// String renders the period as "type:key".
func (p Period) String() string {
	return string(p.Type) + ":" + p.Key
}

// ParseType validates a window type name. Unknown names wrap domain.ErrValidation.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case AllTime, Daily, Weekly, Monthly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unsupported period type %q", domain.ErrValidation, s)
	}
}

// ForTime returns the period of type t containing instant now, evaluated in loc.
func ForTime(t Type, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	switch t {
	case AllTime:
		return Period{Type: AllTime, Key: AllTimeKey}, nil
	case Daily:
		return Period{Type: Daily, Key: local.Format(domain.DateLayout)}, nil
	case Weekly:
		return Period{Type: Weekly, Key: ISOWeekKey(local)}, nil
	case Monthly:
		return Period{Type: Monthly, Key: local.Format("2006-01")}, nil
	default:
		return Period{}, fmt.Errorf("%w: unsupported period type %q", domain.ErrValidation, t)
	}
}

// ISOWeekKey formats the ISO-8601 week of t as "YYYY-Www". The year is the
// ISO week-numbering year, which differs from the calendar year around
// January 1st: the week belongs to the year that holds its Thursday.
func ISOWeekKey(t time.Time) string {
	year, week := isoWeek(t)
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// isoWeek computes the ISO week from the Thursday of t's Monday-based week.
func isoWeek(t time.Time) (year, week int) {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	// Monday=1 .. Sunday=7
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := date.AddDate(0, 0, 4-weekday)

	year = thursday.Year()
	week = (thursday.YearDay()-1)/7 + 1
	return year, week
}

// WindowStart returns the first instant of the window of type t containing
// now, in loc. AllTime has no lower bound and returns ok=false.
func WindowStart(t Type, now time.Time, loc *time.Location) (start time.Time, ok bool, err error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch t {
	case AllTime:
		return time.Time{}, false, nil
	case Daily:
		return midnight, true, nil
	case Weekly:
		weekday := int(midnight.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return midnight.AddDate(0, 0, 1-weekday), true, nil
	case Monthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("%w: unsupported period type %q", domain.ErrValidation, t)
	}
}

// ValidateKey checks that key is well formed for window type t. Errors wrap
// domain.ErrValidation.
func ValidateKey(t Type, key string) error {
	var ok bool
	switch t {
	case AllTime:
		ok = key == AllTimeKey
	case Daily:
		_, err := time.Parse(domain.DateLayout, key)
		ok = err == nil
	case Monthly:
		_, err := time.Parse("2006-01", key)
		ok = err == nil
	case Weekly:
		var year, week int
		n, err := fmt.Sscanf(key, "%4d-W%2d", &year, &week)
		ok = err == nil && n == 2 && len(key) == 8 && week >= 1 && week <= 53
	default:
		return fmt.Errorf("%w: unsupported period type %q", domain.ErrValidation, t)
	}
	if !ok {
		return fmt.Errorf("%w: malformed %s period key %q", domain.ErrValidation, t, key)
	}
	return nil
}
