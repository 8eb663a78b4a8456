package reminders

import (
	"context"
	"time"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// ReminderType defines when a reminder fires relative to its appointment.
type ReminderType string

const (
	ReminderType24HBefore ReminderType = "24h_before"
	ReminderTypeDayOf     ReminderType = "day_of"
)

// ReminderStatus defines the lifecycle state of a reminder.
type ReminderStatus string

const (
	ReminderStatusPending    ReminderStatus = "pending"
	ReminderStatusProcessing ReminderStatus = "processing"
	ReminderStatusSent       ReminderStatus = "sent"
	ReminderStatusFailed     ReminderStatus = "failed"
	ReminderStatusCancelled  ReminderStatus = "cancelled"
)

// Reminder is a scheduled client notification about an appointment.
type Reminder struct {
	ID            int64
	UserID        int64
	AppointmentID int64
	ReminderType  ReminderType
	ScheduledAt   time.Time
	SentAt        *time.Time
	Status        ReminderStatus
	Enabled       bool
	RetryCount    int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter selects reminders for querying and cleanup.
type Filter struct {
	Status          []ReminderStatus
	ScheduledBefore *time.Time
	SentBefore      *time.Time
	AppointmentID   *int64
}

// Repository provides reminder storage.
type Repository interface {
	CreateReminder(ctx context.Context, r *Reminder) error
	UpdateReminder(ctx context.Context, r *Reminder) error
	FindReminders(ctx context.Context, filter Filter) ([]Reminder, error)

	// TryAcquireReminder atomically claims a reminder for processing.
	// Returns false when another worker already holds it.
	TryAcquireReminder(ctx context.Context, id int64) (bool, error)
	ReleaseReminder(ctx context.Context, id int64) error

	DeleteReminders(ctx context.Context, filter Filter) (int64, error)
	CountPendingReminders(ctx context.Context) (int64, error)
}

// AppointmentSource exposes the appointments a reminder refers to.
type AppointmentSource interface {
	GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error)
	MarkReminderSent(ctx context.Context, appointmentID int64) error
}

// Notifier delivers the reminder to the client.
type Notifier interface {
	SendReminder(ctx context.Context, userID int64, appointment *models.Appointment) error
}
