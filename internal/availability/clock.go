package availability

import "time"

// Clock supplies the current wall-clock time. The engine reads it once
// per query to filter past-due start times, and tests substitute a
// fixed clock for deterministic "today" scenarios.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}

// FixedClock always reports the same instant.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time { return c.Instant }
