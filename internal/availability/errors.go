package availability

import "errors"

var (
	// ErrProfessionalNotFound indicates an unknown professional id.
	ErrProfessionalNotFound = errors.New("professional not found")

	// ErrScheduleNotRegistered indicates a professional that never
	// submitted a weekly schedule.
	ErrScheduleNotRegistered = errors.New("professional has no registered schedule")
)
