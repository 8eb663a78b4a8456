package schedule

import "errors"

// Sentinel errors for schedule decoding and period validation.
// Validation wraps these with day/period context, so callers match
// with errors.Is.
var (
	// ErrScheduleFormat indicates stored schedule text that does not
	// decode into the expected day -> period-list structure.
	ErrScheduleFormat = errors.New("schedule text is not a valid weekly schedule")

	// ErrPeriodMissingField indicates a period with a blank start or end.
	ErrPeriodMissingField = errors.New("start and end must be provided")

	// ErrInvalidTimeFormat indicates a time that does not parse as HH:MM.
	ErrInvalidTimeFormat = errors.New("time must be in 24-hour HH:MM format")

	// ErrEndBeforeStart indicates a period whose end is not after its start.
	ErrEndBeforeStart = errors.New("end must be later than start")

	// ErrCrossesNoon indicates a period that starts in the morning and
	// ends at or after noon.
	ErrCrossesNoon = errors.New("period must be entirely morning or entirely afternoon")
)
