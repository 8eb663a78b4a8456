package models

import "time"

// User roles.
const (
	RoleClient       = "client"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCanceled  = "canceled"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// User represents a platform account (client, professional or admin).
type User struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Professional represents a tattoo professional whose working hours are bookable.
type Professional struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Bio        string    `json:"bio,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Street     string    `json:"street,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Appointment represents a booked interval in a professional's calendar.
type Appointment struct {
	ID             int64     `json:"id"`
	Reference      string    `json:"reference"`
	ProfessionalID int64     `json:"professional_id"`
	ClientID       int64     `json:"client_id"`
	ServiceType    string    `json:"service_type"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Status         string    `json:"status"`
	Comment        string    `json:"comment,omitempty"`
	ReminderSent   bool      `json:"reminder_sent"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int64     `json:"version"`
}

// IsActive reports whether the appointment still occupies its interval.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCanceled && a.Status != StatusRejected
}

// Overlaps checks the appointment interval against [start, end).
// Half-open semantics: no overlap when one interval ends exactly
// where the other begins.
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}
