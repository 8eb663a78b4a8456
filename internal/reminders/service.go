package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// Service creates and cancels reminders as appointments change.
type Service struct {
	repo    Repository
	metrics *Metrics
	logger  zerolog.Logger
}

// NewService wires a reminder service. Metrics may be nil.
func NewService(repo Repository, metrics *Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logger.With().Str("component", "reminders").Logger(),
	}
}

// ScheduleForAppointment registers the standard reminders for a new
// appointment. Reminders that would already be due are skipped.
func (s *Service) ScheduleForAppointment(ctx context.Context, a *models.Appointment) error {
	now := time.Now()
	plan := []struct {
		kind ReminderType
		at   time.Time
	}{
		{ReminderType24HBefore, a.StartTime.Add(-24 * time.Hour)},
		{ReminderTypeDayOf, time.Date(a.StartTime.Year(), a.StartTime.Month(), a.StartTime.Day(), 8, 0, 0, 0, a.StartTime.Location())},
	}

	for _, p := range plan {
		if !p.at.After(now) {
			continue
		}
		r := &Reminder{
			UserID:        a.ClientID,
			AppointmentID: a.ID,
			ReminderType:  p.kind,
			ScheduledAt:   p.at,
			Status:        ReminderStatusPending,
			Enabled:       true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.CreateReminder(ctx, r); err != nil {
			return fmt.Errorf("create %s reminder for appointment %d: %w", p.kind, a.ID, err)
		}
	}

	s.logger.Debug().Int64("appointment_id", a.ID).Msg("reminders scheduled")
	return nil
}

// CancelForAppointment cancels every pending reminder of an appointment
// (used when the appointment is canceled or rejected).
func (s *Service) CancelForAppointment(ctx context.Context, appointmentID int64) error {
	found, err := s.repo.FindReminders(ctx, Filter{
		AppointmentID: &appointmentID,
		Status:        []ReminderStatus{ReminderStatusPending, ReminderStatusProcessing},
	})
	if err != nil {
		return err
	}
	for i := range found {
		r := &found[i]
		r.Status = ReminderStatusCancelled
		r.UpdatedAt = time.Now()
		if err := s.repo.UpdateReminder(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// RefreshQueueGauge updates the pending-queue metric.
func (s *Service) RefreshQueueGauge(ctx context.Context) {
	count, err := s.repo.CountPendingReminders(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("count pending reminders failed")
		return
	}
	s.metrics.SetQueueSize(count)
}
