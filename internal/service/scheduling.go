// Package service coordinates schedule management and booking on top of
// the availability engine and the storage layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Vmp3/Inkspiration-sub001/internal/availability"
	"github.com/Vmp3/Inkspiration-sub001/internal/events"
	"github.com/Vmp3/Inkspiration-sub001/internal/metrics"
	"github.com/Vmp3/Inkspiration-sub001/internal/models"
	"github.com/Vmp3/Inkspiration-sub001/internal/schedule"
)

// ErrOutsideWorkingHours is returned when a requested appointment does
// not fit the professional's working hours.
var ErrOutsideWorkingHours = errors.New("requested interval is outside working hours")

// Store is the persistence surface the scheduling service needs.
type Store interface {
	GetProfessionalByID(ctx context.Context, id int64) (*models.Professional, error)
	SaveScheduleRaw(ctx context.Context, professionalID int64, text []byte) error
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id, version int64, status string) error
	ListAppointmentsByProfessional(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error)
}

// AvailabilityEngine answers slot and working-hours questions.
type AvailabilityEngine interface {
	StartTimes(ctx context.Context, professionalID int64, date time.Time, duration time.Duration) ([]string, error)
	StartTimesForService(ctx context.Context, professionalID int64, date time.Time, serviceType string) ([]string, error)
	IsWithinWorkingHours(ctx context.Context, professionalID int64, start, end time.Time) (bool, error)
}

// Authorizer decides whether a caller may manage a professional.
type Authorizer interface {
	CanManageSchedule(ctx context.Context, callerID, professionalID int64) error
}

// ReminderPlanner creates and cancels appointment reminders.
type ReminderPlanner interface {
	ScheduleForAppointment(ctx context.Context, a *models.Appointment) error
	CancelForAppointment(ctx context.Context, appointmentID int64) error
}

// Scheduling is the application service for schedules and bookings.
type Scheduling struct {
	store     Store
	engine    AvailabilityEngine
	auth      Authorizer
	reminders ReminderPlanner
	bus       *events.Bus
	logger    zerolog.Logger
}

// NewScheduling wires the scheduling service. Reminders and bus may be
// nil when those subsystems are disabled.
func NewScheduling(
	store Store,
	engine AvailabilityEngine,
	auth Authorizer,
	reminders ReminderPlanner,
	bus *events.Bus,
	logger zerolog.Logger,
) *Scheduling {
	return &Scheduling{
		store:     store,
		engine:    engine,
		auth:      auth,
		reminders: reminders,
		bus:       bus,
		logger:    logger.With().Str("component", "scheduling").Logger(),
	}
}

// SubmitSchedule validates and stores a professional's weekly schedule,
// replacing any previous one.
func (s *Scheduling) SubmitSchedule(ctx context.Context, professionalID int64, input schedule.Input) error {
	prof, err := s.store.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		return fmt.Errorf("lookup professional %d: %w", professionalID, err)
	}
	if prof == nil {
		return availability.ErrProfessionalNotFound
	}

	ws, err := schedule.Validate(input)
	if err != nil {
		return err
	}

	if err := s.store.SaveScheduleRaw(ctx, professionalID, schedule.Encode(ws)); err != nil {
		return err
	}

	metrics.IncScheduleUpdated()
	s.publish(events.TypeScheduleUpdated, map[string]int64{"professional_id": professionalID})
	s.logger.Info().Int64("professional_id", professionalID).Msg("schedule stored")
	return nil
}

// SubmitScheduleWithAuthorization checks the caller before storing the
// schedule. Only the profile owner or an admin may submit.
func (s *Scheduling) SubmitScheduleWithAuthorization(ctx context.Context, callerID, professionalID int64, input schedule.Input) error {
	if err := s.auth.CanManageSchedule(ctx, callerID, professionalID); err != nil {
		return err
	}
	return s.SubmitSchedule(ctx, professionalID, input)
}

// GetAvailability returns bookable start times for an explicit duration.
func (s *Scheduling) GetAvailability(ctx context.Context, professionalID int64, date time.Time, duration time.Duration) ([]string, error) {
	started := time.Now()
	times, err := s.engine.StartTimes(ctx, professionalID, date, duration)
	metrics.ObserveAvailabilityDuration(time.Since(started).Seconds())
	if err != nil {
		metrics.IncAvailabilityQuery("error")
		return nil, err
	}
	metrics.IncAvailabilityQuery("ok")
	return times, nil
}

// GetAvailabilityForService returns bookable start times for a named
// service type.
func (s *Scheduling) GetAvailabilityForService(ctx context.Context, professionalID int64, date time.Time, serviceType string) ([]string, error) {
	started := time.Now()
	times, err := s.engine.StartTimesForService(ctx, professionalID, date, serviceType)
	metrics.ObserveAvailabilityDuration(time.Since(started).Seconds())
	if err != nil {
		metrics.IncAvailabilityQuery("error")
		return nil, err
	}
	metrics.IncAvailabilityQuery("ok")
	return times, nil
}

// CheckInterval reports whether [start, end] fits the professional's
// working hours.
func (s *Scheduling) CheckInterval(ctx context.Context, professionalID int64, start, end time.Time) (bool, error) {
	return s.engine.IsWithinWorkingHours(ctx, professionalID, start, end)
}

// BookingRequest carries everything needed to book an appointment.
type BookingRequest struct {
	ProfessionalID int64
	ClientID       int64
	ServiceType    string
	StartTime      time.Time
	Comment        string
}

// BookAppointment creates a pending appointment at the requested start
// time. The interval must fit working hours; the storage layer rejects
// conflicting bookings inside its transaction.
func (s *Scheduling) BookAppointment(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	hours, err := availability.DurationHours(req.ServiceType)
	if err != nil {
		return nil, err
	}
	end := req.StartTime.Add(time.Duration(hours) * time.Hour)

	ok, err := s.engine.IsWithinWorkingHours(ctx, req.ProfessionalID, req.StartTime, end)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s from %s: %w",
			req.ServiceType, req.StartTime.Format("2006-01-02 15:04"), ErrOutsideWorkingHours)
	}

	appt := &models.Appointment{
		Reference:      uuid.NewString(),
		ProfessionalID: req.ProfessionalID,
		ClientID:       req.ClientID,
		ServiceType:    req.ServiceType,
		StartTime:      req.StartTime,
		EndTime:        end,
		Status:         models.StatusPending,
		Comment:        req.Comment,
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	if s.reminders != nil {
		if err := s.reminders.ScheduleForAppointment(ctx, appt); err != nil {
			s.logger.Error().Err(err).Int64("appointment_id", appt.ID).Msg("schedule reminders failed")
		}
	}

	metrics.IncAppointmentCreated(req.ServiceType)
	s.publish(events.TypeAppointmentCreated, appt)
	s.logger.Info().
		Int64("appointment_id", appt.ID).
		Str("reference", appt.Reference).
		Int64("professional_id", appt.ProfessionalID).
		Time("start", appt.StartTime).
		Msg("appointment booked")
	return appt, nil
}

// CancelAppointment moves an appointment to canceled and drops its
// pending reminders.
func (s *Scheduling) CancelAppointment(ctx context.Context, appointmentID int64) error {
	appt, err := s.store.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt == nil {
		return fmt.Errorf("appointment %d not found", appointmentID)
	}
	if !appt.IsActive() {
		return nil
	}

	if err := s.store.UpdateAppointmentStatus(ctx, appt.ID, appt.Version, models.StatusCanceled); err != nil {
		return err
	}

	if s.reminders != nil {
		if err := s.reminders.CancelForAppointment(ctx, appt.ID); err != nil {
			s.logger.Error().Err(err).Int64("appointment_id", appt.ID).Msg("cancel reminders failed")
		}
	}

	metrics.IncAppointmentCanceled()
	s.publish(events.TypeAppointmentCanceled, map[string]int64{"appointment_id": appt.ID})
	s.logger.Info().Int64("appointment_id", appt.ID).Msg("appointment canceled")
	return nil
}

// ListAppointments returns a professional's appointments in [from, to).
func (s *Scheduling) ListAppointments(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error) {
	return s.store.ListAppointmentsByProfessional(ctx, professionalID, from, to)
}

func (s *Scheduling) publish(eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	event, err := events.NewEvent(eventType, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("encode event failed")
		return
	}
	s.bus.Publish(event)
}
