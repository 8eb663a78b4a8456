package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig controls delivery retries.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry schedule.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// SendError is a delivery failure reported by the notifier. RetryAfter
// carries the messenger's flood-control delay in seconds when present.
type SendError struct {
	Code       int
	Message    string
	RetryAfter int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send error %d: %s", e.Code, e.Message)
}

// retryable reports whether the failure is worth another attempt.
func (e *SendError) retryable() bool {
	return e.Code == 429 || e.Code >= 500
}

// Sender delivers reminders with rate limiting and retries.
type Sender struct {
	notifier     Notifier
	repo         Repository
	appointments AppointmentSource
	rateLimiter  *RateLimiter
	retryConfig  RetryConfig
	metrics      *Metrics
	logger       zerolog.Logger
}

// NewSender wires a reminder sender. Metrics may be nil.
func NewSender(
	notifier Notifier,
	repo Repository,
	appointments AppointmentSource,
	rateLimiter *RateLimiter,
	retryConfig RetryConfig,
	metrics *Metrics,
	logger zerolog.Logger,
) *Sender {
	return &Sender{
		notifier:     notifier,
		repo:         repo,
		appointments: appointments,
		rateLimiter:  rateLimiter,
		retryConfig:  retryConfig,
		metrics:      metrics,
		logger:       logger.With().Str("component", "reminder_sender").Logger(),
	}
}

// SendWithRetry delivers one reminder, retrying transient failures with
// the configured backoff, and records the final state on the reminder.
func (s *Sender) SendWithRetry(ctx context.Context, r *Reminder) error {
	appt, err := s.appointments.GetAppointmentByID(ctx, r.AppointmentID)
	if err != nil {
		return fmt.Errorf("load appointment %d: %w", r.AppointmentID, err)
	}
	if appt == nil || !appt.IsActive() {
		r.Status = ReminderStatusCancelled
		r.UpdatedAt = time.Now()
		return s.repo.UpdateReminder(ctx, r)
	}

	var lastErr error
	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			s.metrics.IncRetries()
			if err := s.sleepBeforeRetry(ctx, attempt, lastErr); err != nil {
				return err
			}
		}

		if err := s.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		started := time.Now()
		lastErr = s.notifier.SendReminder(ctx, r.UserID, appt)
		s.metrics.ObserveSendDuration(time.Since(started).Seconds())

		if lastErr == nil {
			now := time.Now()
			r.Status = ReminderStatusSent
			r.SentAt = &now
			r.UpdatedAt = now
			r.LastError = ""
			s.metrics.IncSent("sent", r.ReminderType)
			if err := s.appointments.MarkReminderSent(ctx, appt.ID); err != nil {
				s.logger.Error().Err(err).Int64("appointment_id", appt.ID).Msg("mark reminder sent failed")
			}
			return s.repo.UpdateReminder(ctx, r)
		}

		r.RetryCount++
		var sendErr *SendError
		if errors.As(lastErr, &sendErr) && !sendErr.retryable() {
			break
		}
	}

	r.Status = ReminderStatusFailed
	r.LastError = lastErr.Error()
	r.UpdatedAt = time.Now()
	s.metrics.IncSent("failed", r.ReminderType)
	s.logger.Error().Err(lastErr).
		Int64("reminder_id", r.ID).
		Int64("appointment_id", r.AppointmentID).
		Msg("reminder delivery failed")
	if err := s.repo.UpdateReminder(ctx, r); err != nil {
		return err
	}
	return lastErr
}

func (s *Sender) sleepBeforeRetry(ctx context.Context, attempt int, lastErr error) error {
	delay := s.retryConfig.RetryDelays[len(s.retryConfig.RetryDelays)-1]
	if attempt-1 < len(s.retryConfig.RetryDelays) {
		delay = s.retryConfig.RetryDelays[attempt-1]
	}

	// Flood control from the messenger overrides the schedule.
	var sendErr *SendError
	if errors.As(lastErr, &sendErr) && sendErr.RetryAfter > 0 {
		delay = time.Duration(sendErr.RetryAfter) * time.Second
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
