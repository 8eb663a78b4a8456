package schedule

import "time"

// Weekday identifies a day inside the recurring weekly schedule.
// Monday is 0 so that the serialized order matches the business week.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// dayTokens maps Weekday to the day-name keys used in the serialized
// schedule. The stored text format depends on these exact strings.
var dayTokens = [7]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

// Token returns the serialized day-name key for the weekday.
func (d Weekday) Token() string {
	if d < Monday || d > Sunday {
		return ""
	}
	return dayTokens[d]
}

func (d Weekday) String() string { return d.Token() }

// WeekdayOf localizes a calendar date to its schedule weekday.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Sunday:
		return Sunday
	default:
		return Weekday(int(t.Weekday()) - 1)
	}
}

// ParseDayToken resolves a serialized day-name key back to a Weekday.
// The second result is false for unrecognized keys.
func ParseDayToken(token string) (Weekday, bool) {
	for d, name := range dayTokens {
		if name == token {
			return Weekday(d), true
		}
	}
	return 0, false
}
