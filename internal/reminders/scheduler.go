package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerConfig controls the reminder processing loop.
type SchedulerConfig struct {
	// CheckInterval is how often due reminders are looked up.
	CheckInterval time.Duration
	// CleanupEnabled enables removal of old sent/failed reminders.
	CleanupEnabled bool
	// CleanupRetentionDays is how long sent reminders are kept.
	CleanupRetentionDays int
}

// DefaultSchedulerConfig returns the default loop configuration.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CheckInterval:        time.Minute,
		CleanupEnabled:       true,
		CleanupRetentionDays: 7,
	}
}

// Scheduler periodically delivers due reminders.
type Scheduler struct {
	config  SchedulerConfig
	service *Service
	sender  *Sender
	logger  zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a reminder scheduler.
func NewScheduler(config SchedulerConfig, service *Service, sender *Sender, logger zerolog.Logger) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &Scheduler{
		config:  config,
		service: service,
		sender:  sender,
		logger:  logger.With().Str("component", "reminder_scheduler").Logger(),
		stopCh:  make(chan struct{}),
	}
}

// Start runs the processing loop until the context is canceled or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().Dur("interval", s.config.CheckInterval).Msg("reminder scheduler started")

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder scheduler stopped by context")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// Stop halts the loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunOnce processes every reminder due now, then runs cleanup.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	now := start

	due, err := s.service.repo.FindReminders(ctx, Filter{
		Status:          []ReminderStatus{ReminderStatusPending},
		ScheduledBefore: &now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch due reminders failed")
		return
	}

	var sent, failed int
	for i := range due {
		select {
		case <-ctx.Done():
			s.logger.Info().Int("processed", sent+failed).Int("remaining", len(due)-sent-failed).
				Msg("reminder processing interrupted")
			return
		default:
		}

		if err := s.processReminder(ctx, &due[i]); err != nil {
			failed++
		} else {
			sent++
		}
	}

	if len(due) > 0 {
		s.logger.Info().
			Int("due", len(due)).
			Int("sent", sent).
			Int("failed", failed).
			Dur("duration", time.Since(start)).
			Msg("due reminders processed")
	}

	s.service.RefreshQueueGauge(ctx)
	if s.config.CleanupEnabled {
		s.cleanupOldReminders(ctx)
	}
}

func (s *Scheduler) processReminder(ctx context.Context, r *Reminder) error {
	acquired, err := s.service.repo.TryAcquireReminder(ctx, r.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("id", r.ID).Msg("acquire reminder failed")
		return err
	}
	if !acquired {
		s.logger.Debug().Int64("id", r.ID).Msg("reminder already being processed")
		return nil
	}
	defer func() {
		if err := s.service.repo.ReleaseReminder(ctx, r.ID); err != nil {
			s.logger.Error().Err(err).Int64("id", r.ID).Msg("release reminder failed")
		}
	}()

	if !r.Enabled {
		r.Status = ReminderStatusCancelled
		r.UpdatedAt = time.Now()
		return s.service.repo.UpdateReminder(ctx, r)
	}

	return s.sender.SendWithRetry(ctx, r)
}

func (s *Scheduler) cleanupOldReminders(ctx context.Context) {
	retention := time.Duration(s.config.CleanupRetentionDays) * 24 * time.Hour
	cutoff := time.Now().Add(-retention)

	deleted, err := s.service.repo.DeleteReminders(ctx, Filter{
		Status:     []ReminderStatus{ReminderStatusSent, ReminderStatusCancelled},
		SentBefore: &cutoff,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("cleanup sent reminders failed")
		return
	}
	if deleted > 0 {
		s.service.metrics.IncCleanedUp(deleted)
		s.logger.Info().Int64("deleted", deleted).Msg("old reminders cleaned up")
	}
}
