package schedule

import (
	"fmt"
	"strings"
)

// Input is a raw schedule submission: day token -> periods, exactly as
// received from the caller before any business validation.
type Input map[string][]Period

// periodCheck is one rule in the validation chain. Checks run in order
// and the first failing rule aborts the whole submission.
type periodCheck func(p Period) error

var periodChecks = []periodCheck{
	checkFieldsPresent,
	checkTimeFormat,
	checkEndAfterStart,
	checkSameHalfOfDay,
}

// Validate runs every submitted period through the rule chain and, on
// success, returns the schedule ready for encoding. Validation is
// all-or-nothing: the first violation fails the entire submission.
// Unrecognized day keys are dropped rather than rejected.
func Validate(in Input) (*WeeklySchedule, error) {
	ws := &WeeklySchedule{}
	for d := Monday; d <= Sunday; d++ {
		periods, ok := in[d.Token()]
		if !ok || len(periods) == 0 {
			continue
		}
		for i, p := range periods {
			for _, check := range periodChecks {
				if err := check(p); err != nil {
					return nil, fmt.Errorf("%s period %d: %w", d, i+1, err)
				}
			}
		}
		ws.SetPeriods(d, periods)
	}
	return ws, nil
}

func checkFieldsPresent(p Period) error {
	if strings.TrimSpace(p.Start) == "" || strings.TrimSpace(p.End) == "" {
		return ErrPeriodMissingField
	}
	return nil
}

func checkTimeFormat(p Period) error {
	if _, err := ParseClock(p.Start); err != nil {
		return err
	}
	if _, err := ParseClock(p.End); err != nil {
		return err
	}
	return nil
}

func checkEndAfterStart(p Period) error {
	start, _ := ParseClock(p.Start)
	end, _ := ParseClock(p.End)
	if end <= start {
		return ErrEndBeforeStart
	}
	return nil
}

// checkSameHalfOfDay rejects periods straddling noon: a period starting
// in the morning must also end before 12:00.
func checkSameHalfOfDay(p Period) error {
	start, _ := ParseClock(p.Start)
	end, _ := ParseClock(p.End)
	if start < noonMinute && end >= noonMinute {
		return ErrCrossesNoon
	}
	return nil
}
