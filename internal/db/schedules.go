package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetScheduleRaw returns the stored schedule text for a professional.
// The bool result is false when no schedule was ever registered.
func (db *DB) GetScheduleRaw(ctx context.Context, professionalID int64) ([]byte, bool, error) {
	var text string
	err := db.QueryRowContext(ctx,
		"SELECT schedule FROM professional_schedules WHERE professional_id = ?",
		professionalID,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select schedule: %w", err)
	}
	return []byte(text), true, nil
}

// SaveScheduleRaw stores the schedule text for a professional. A
// resubmission replaces the previous schedule entirely.
func (db *DB) SaveScheduleRaw(ctx context.Context, professionalID int64, text []byte) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO professional_schedules (professional_id, schedule, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(professional_id) DO UPDATE SET
			schedule = excluded.schedule,
			updated_at = excluded.updated_at`,
		professionalID, string(text), now, now,
	)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

// DeleteSchedule removes a professional's schedule.
func (db *DB) DeleteSchedule(ctx context.Context, professionalID int64) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM professional_schedules WHERE professional_id = ?", professionalID)
	return err
}
