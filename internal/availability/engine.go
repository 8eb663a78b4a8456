package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
	"github.com/Vmp3/Inkspiration-sub001/internal/schedule"
)

// slotStepMinutes is the candidate start-time granularity. Slots are
// offered on the hour from each working span's start.
const slotStepMinutes = 60

// ProfessionalSource resolves professionals by id. A nil professional
// with a nil error means "not found".
type ProfessionalSource interface {
	GetProfessionalByID(ctx context.Context, id int64) (*models.Professional, error)
}

// ScheduleSource loads the stored schedule text for a professional.
// The bool result is false when no schedule was ever registered.
type ScheduleSource interface {
	GetScheduleRaw(ctx context.Context, professionalID int64) ([]byte, bool, error)
}

// AppointmentSource lists active appointments overlapping [from, to)
// for a professional.
type AppointmentSource interface {
	FindActiveAppointments(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error)
}

// Engine computes bookable start times and working-hours containment
// for professionals. It is stateless: every call reads the schedule and
// appointments fresh, so concurrent use needs no locking.
type Engine struct {
	professionals ProfessionalSource
	schedules     ScheduleSource
	appointments  AppointmentSource
	clock         Clock
	logger        zerolog.Logger
}

// NewEngine wires an availability engine. A nil clock defaults to the
// system clock.
func NewEngine(
	professionals ProfessionalSource,
	schedules ScheduleSource,
	appointments AppointmentSource,
	clock Clock,
	logger zerolog.Logger,
) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{
		professionals: professionals,
		schedules:     schedules,
		appointments:  appointments,
		clock:         clock,
		logger:        logger.With().Str("component", "availability").Logger(),
	}
}

// StartTimes returns the bookable "HH:MM" start times for a service of
// the given duration on the given date, in chronological order. A day
// without configured hours yields an empty result, not an error.
func (e *Engine) StartTimes(ctx context.Context, professionalID int64, date time.Time, duration time.Duration) ([]string, error) {
	ws, err := e.loadSchedule(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	day := schedule.WeekdayOf(date)
	spans, err := ws.Spans(day)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schedule.ErrScheduleFormat, err)
	}
	if len(spans) == 0 {
		return []string{}, nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	booked, err := e.appointments.FindActiveAppointments(ctx, professionalID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}

	now := e.clock.Now()
	durMinutes := int(duration.Minutes())
	times := []string{}
	for _, span := range spans {
		for m := span.Start; m+durMinutes <= span.End; m += slotStepMinutes {
			slotStart := dayStart.Add(time.Duration(m) * time.Minute)
			slotEnd := slotStart.Add(duration)

			if conflicts(booked, slotStart, slotEnd) {
				continue
			}
			if sameDate(date, now) && slotStart.Before(now) {
				continue
			}
			times = append(times, schedule.FormatClock(m))
		}
	}

	e.logger.Debug().
		Int64("professional_id", professionalID).
		Str("date", date.Format("2006-01-02")).
		Int("slots", len(times)).
		Msg("availability computed")
	return times, nil
}

// StartTimesForService resolves a service-type token to its duration
// before computing start times. Corrupt stored schedules surface as a
// query error wrapping the decode failure.
func (e *Engine) StartTimesForService(ctx context.Context, professionalID int64, date time.Time, serviceType string) ([]string, error) {
	hours, err := DurationHours(serviceType)
	if err != nil {
		return nil, err
	}
	times, err := e.StartTimes(ctx, professionalID, date, time.Duration(hours)*time.Hour)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleFormat) {
			return nil, fmt.Errorf("availability query for professional %d: %w", professionalID, err)
		}
		return nil, err
	}
	return times, nil
}

// IsWithinWorkingHours reports whether the closed interval [start, end]
// lies entirely inside the professional's working hours for start's day
// of week. Boundary equality counts as inside on both ends. Existing
// bookings are not consulted; conflict checking belongs to the booking
// commit path.
func (e *Engine) IsWithinWorkingHours(ctx context.Context, professionalID int64, start, end time.Time) (bool, error) {
	ws, err := e.loadSchedule(ctx, professionalID)
	if err != nil {
		return false, err
	}
	if !end.After(start) {
		return false, nil
	}

	day := schedule.WeekdayOf(start)
	spans, err := ws.Spans(day)
	if err != nil {
		return false, fmt.Errorf("%w: %v", schedule.ErrScheduleFormat, err)
	}
	if len(spans) == 0 {
		return false, nil
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	startMin := int(start.Sub(dayStart).Minutes())
	endMin := int(end.Sub(dayStart).Minutes())

	for _, span := range spans {
		if span.Start <= startMin && endMin <= span.End {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) loadSchedule(ctx context.Context, professionalID int64) (*schedule.WeeklySchedule, error) {
	prof, err := e.professionals.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("lookup professional %d: %w", professionalID, err)
	}
	if prof == nil {
		return nil, ErrProfessionalNotFound
	}

	raw, ok, err := e.schedules.GetScheduleRaw(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("load schedule for professional %d: %w", professionalID, err)
	}
	if !ok {
		return nil, ErrScheduleNotRegistered
	}

	ws, err := schedule.Decode(raw)
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func conflicts(booked []models.Appointment, start, end time.Time) bool {
	for i := range booked {
		if booked[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
