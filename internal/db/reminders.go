package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Vmp3/Inkspiration-sub001/internal/reminders"
)

// CreateReminder inserts a new reminder row.
func (d *DB) CreateReminder(ctx context.Context, r *reminders.Reminder) error {
	res, err := d.ExecContext(ctx, `
        INSERT INTO reminders (user_id, appointment_id, reminder_type, scheduled_at, status, enabled, retry_count, last_error, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID, r.AppointmentID, string(r.ReminderType), r.ScheduledAt,
		string(r.Status), r.Enabled, r.RetryCount, r.LastError, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create reminder id: %w", err)
	}
	r.ID = id
	return nil
}

// UpdateReminder persists the mutable fields of a reminder.
func (d *DB) UpdateReminder(ctx context.Context, r *reminders.Reminder) error {
	var sentAt interface{}
	if r.SentAt != nil {
		sentAt = *r.SentAt
	}
	_, err := d.ExecContext(ctx, `
        UPDATE reminders
        SET status = ?, enabled = ?, sent_at = ?, retry_count = ?, last_error = ?, updated_at = ?
        WHERE id = ?`,
		string(r.Status), r.Enabled, sentAt, r.RetryCount, r.LastError, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("update reminder %d: %w", r.ID, err)
	}
	return nil
}

// FindReminders returns reminders matching the filter, oldest first.
func (d *DB) FindReminders(ctx context.Context, filter reminders.Filter) ([]reminders.Reminder, error) {
	where, args := reminderFilterClause(filter)
	query := `
        SELECT id, user_id, appointment_id, reminder_type, scheduled_at, sent_at,
               status, enabled, retry_count, last_error, created_at, updated_at
        FROM reminders` + where + ` ORDER BY scheduled_at ASC`

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find reminders: %w", err)
	}
	defer rows.Close()

	var out []reminders.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// TryAcquireReminder claims a pending reminder for processing. The
// conditional update makes concurrent workers mutually exclusive.
func (d *DB) TryAcquireReminder(ctx context.Context, id int64) (bool, error) {
	res, err := d.ExecContext(ctx, `
        UPDATE reminders SET status = ?, updated_at = ?
        WHERE id = ? AND status = ?`,
		string(reminders.ReminderStatusProcessing), time.Now(), id, string(reminders.ReminderStatusPending))
	if err != nil {
		return false, fmt.Errorf("acquire reminder %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire reminder %d: %w", id, err)
	}
	return affected == 1, nil
}

// ReleaseReminder puts a still-processing reminder back to pending. A
// reminder already moved to a terminal state is left untouched.
func (d *DB) ReleaseReminder(ctx context.Context, id int64) error {
	_, err := d.ExecContext(ctx, `
        UPDATE reminders SET status = ?, updated_at = ?
        WHERE id = ? AND status = ?`,
		string(reminders.ReminderStatusPending), time.Now(), id, string(reminders.ReminderStatusProcessing))
	if err != nil {
		return fmt.Errorf("release reminder %d: %w", id, err)
	}
	return nil
}

// DeleteReminders removes reminders matching the filter and reports how
// many rows were deleted.
func (d *DB) DeleteReminders(ctx context.Context, filter reminders.Filter) (int64, error) {
	where, args := reminderFilterClause(filter)
	res, err := d.ExecContext(ctx, `DELETE FROM reminders`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete reminders: %w", err)
	}
	return res.RowsAffected()
}

// CountPendingReminders returns the size of the pending queue.
func (d *DB) CountPendingReminders(ctx context.Context) (int64, error) {
	var count int64
	err := d.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reminders WHERE status = ?`,
		string(reminders.ReminderStatusPending)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending reminders: %w", err)
	}
	return count, nil
}

func reminderFilterClause(filter reminders.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, st := range filter.Status {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		conds = append(conds, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.ScheduledBefore != nil {
		conds = append(conds, "scheduled_at <= ?")
		args = append(args, *filter.ScheduledBefore)
	}
	if filter.SentBefore != nil {
		// Cancelled reminders never get a sent_at, so fall back to the
		// last update time for them.
		conds = append(conds, "COALESCE(sent_at, updated_at) <= ?")
		args = append(args, *filter.SentBefore)
	}
	if filter.AppointmentID != nil {
		conds = append(conds, "appointment_id = ?")
		args = append(args, *filter.AppointmentID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanReminder(row rowScanner) (*reminders.Reminder, error) {
	var r reminders.Reminder
	var reminderType, status string
	var sentAt sql.NullTime
	var lastError sql.NullString

	err := row.Scan(&r.ID, &r.UserID, &r.AppointmentID, &reminderType, &r.ScheduledAt, &sentAt,
		&status, &r.Enabled, &r.RetryCount, &lastError, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan reminder: %w", err)
	}

	r.ReminderType = reminders.ReminderType(reminderType)
	r.Status = reminders.ReminderStatus(status)
	if sentAt.Valid {
		t := sentAt.Time
		r.SentAt = &t
	}
	if lastError.Valid {
		r.LastError = lastError.String
	}
	return &r, nil
}
