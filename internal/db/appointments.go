package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// ErrSlotTaken indicates the requested interval overlaps an active
// appointment. Raised inside the booking transaction, so two callers
// racing for the same discovered slot cannot both commit.
var ErrSlotTaken = errors.New("requested interval is already booked")

// FindActiveAppointments returns active appointments overlapping
// [from, to) for a professional, ordered by start time.
func (db *DB) FindActiveAppointments(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, reference, professional_id, client_id, service_type,
		       start_time, end_time, status, comment, reminder_sent, created_at, updated_at, version
		FROM appointments
		WHERE professional_id = ?
		AND start_time < ? AND end_time > ?
		AND status NOT IN ('canceled', 'rejected')
		ORDER BY start_time`,
		professionalID, to, from,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CreateAppointment inserts an appointment after re-checking the slot
// inside the same transaction. The advisory availability check is not
// enough on its own: two callers can both see an open slot.
func (db *DB) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	if a == nil {
		return fmt.Errorf("appointment is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE professional_id = ?
		AND start_time < ? AND end_time > ?
		AND status NOT IN ('canceled', 'rejected')`,
		a.ProfessionalID, a.EndTime, a.StartTime,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("recheck slot: %w", err)
	}
	if count > 0 {
		return ErrSlotTaken
	}

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO appointments (reference, professional_id, client_id, service_type,
			start_time, end_time, status, comment, reminder_sent, created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 1)`,
		a.Reference, a.ProfessionalID, a.ClientID, a.ServiceType,
		a.StartTime, a.EndTime, a.Status, a.Comment, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Version = 1
	return tx.Commit()
}

// GetAppointmentByID returns the appointment or nil when absent.
func (db *DB) GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, reference, professional_id, client_id, service_type,
		       start_time, end_time, status, comment, reminder_sent, created_at, updated_at, version
		FROM appointments WHERE id = ?`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// UpdateAppointmentStatus moves an appointment to a new status with an
// optimistic version check.
func (db *DB) UpdateAppointmentStatus(ctx context.Context, id, version int64, status string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE appointments
		SET status = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		status, time.Now(), id, version,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment %d changed concurrently or does not exist", id)
	}
	return nil
}

// GetUpcomingAppointments returns active appointments starting within
// the window that have not had reminders sent.
func (db *DB) GetUpcomingAppointments(ctx context.Context, within time.Duration) ([]models.Appointment, error) {
	now := time.Now()
	return db.findAppointments(ctx, `
		SELECT id, reference, professional_id, client_id, service_type,
		       start_time, end_time, status, comment, reminder_sent, created_at, updated_at, version
		FROM appointments
		WHERE start_time >= ? AND start_time <= ?
		AND reminder_sent = 0
		AND status NOT IN ('canceled', 'rejected')
		ORDER BY start_time`,
		now, now.Add(within))
}

// ListAppointmentsByProfessional returns all appointments for a
// professional within [from, to), newest first.
func (db *DB) ListAppointmentsByProfessional(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error) {
	return db.findAppointments(ctx, `
		SELECT id, reference, professional_id, client_id, service_type,
		       start_time, end_time, status, comment, reminder_sent, created_at, updated_at, version
		FROM appointments
		WHERE professional_id = ?
		AND start_time >= ? AND start_time < ?
		ORDER BY start_time DESC`,
		professionalID, from, to)
}

// MarkReminderSent flags an appointment's reminder as delivered.
func (db *DB) MarkReminderSent(ctx context.Context, appointmentID int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE appointments SET reminder_sent = 1, updated_at = ? WHERE id = ?",
		time.Now(), appointmentID)
	return err
}

func (db *DB) findAppointments(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var a models.Appointment
	var comment sql.NullString
	err := row.Scan(&a.ID, &a.Reference, &a.ProfessionalID, &a.ClientID, &a.ServiceType,
		&a.StartTime, &a.EndTime, &a.Status, &comment, &a.ReminderSent,
		&a.CreatedAt, &a.UpdatedAt, &a.Version)
	if err != nil {
		return nil, err
	}
	a.Comment = comment.String
	return &a, nil
}
