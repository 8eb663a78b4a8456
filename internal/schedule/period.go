package schedule

import (
	"fmt"
	"strings"
)

// Period is a contiguous working interval within one day, with both
// bounds expressed as wall-clock "HH:MM" strings at minute granularity.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

const (
	noonMinute      = 12 * 60
	lastMinute      = 23*60 + 59
	endOfDayMinutes = 24 * 60
)

// ParseClock parses a strict 24-hour "HH:MM" string into minutes
// since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidTimeFormat)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidTimeFormat)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidTimeFormat)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Span is a period resolved to minutes since midnight. A period ending
// at 23:59 covers the last instant of the day, so its span end is 24:00.
type Span struct {
	Start int
	End   int
}

// span resolves the period bounds; it assumes the period already passed
// validation and reports a format error otherwise.
func (p Period) span() (Span, error) {
	start, err := ParseClock(p.Start)
	if err != nil {
		return Span{}, err
	}
	end, err := ParseClock(p.End)
	if err != nil {
		return Span{}, err
	}
	if end == lastMinute {
		end = endOfDayMinutes
	}
	return Span{Start: start, End: end}, nil
}

// MergeSpans consolidates overlapping and touching spans into maximal
// continuous spans, ordered by start. Two spans touch when the second
// begins in the minute right after the first ends (11:59 followed by
// 12:00 forms one continuous block).
func MergeSpans(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start < sorted[j-1].Start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	merged := []Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End+1 {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// WeeklySchedule maps each weekday to its ordered working periods.
// A day with no periods means no availability on that day.
type WeeklySchedule struct {
	days [7][]Period
}

// Periods returns the configured periods for a weekday, in insertion order.
func (ws *WeeklySchedule) Periods(d Weekday) []Period {
	if d < Monday || d > Sunday {
		return nil
	}
	return ws.days[d]
}

// SetPeriods replaces the period list for a weekday.
func (ws *WeeklySchedule) SetPeriods(d Weekday, periods []Period) {
	if d < Monday || d > Sunday {
		return
	}
	ws.days[d] = periods
}

// IsEmpty reports whether no day has any period configured.
func (ws *WeeklySchedule) IsEmpty() bool {
	for _, ps := range ws.days {
		if len(ps) > 0 {
			return false
		}
	}
	return true
}

// Spans resolves and consolidates the weekday's periods into maximal
// continuous spans.
func (ws *WeeklySchedule) Spans(d Weekday) ([]Span, error) {
	periods := ws.Periods(d)
	if len(periods) == 0 {
		return nil, nil
	}
	spans := make([]Span, 0, len(periods))
	for _, p := range periods {
		s, err := p.span()
		if err != nil {
			return nil, fmt.Errorf("%s period %q-%q: %w", d, p.Start, p.End, err)
		}
		spans = append(spans, s)
	}
	return MergeSpans(spans), nil
}

func (ws *WeeklySchedule) String() string {
	var b strings.Builder
	for d := Monday; d <= Sunday; d++ {
		for i, p := range ws.days[d] {
			if i == 0 {
				fmt.Fprintf(&b, "%s:", d)
			}
			fmt.Fprintf(&b, " %s-%s", p.Start, p.End)
		}
	}
	return b.String()
}
