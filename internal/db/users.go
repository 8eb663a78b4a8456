package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// GetUserByID returns the user or nil when absent.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	var chatID sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT id, name, email, role, telegram_chat_id, active, created_at, updated_at
		FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &chatID, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.TelegramChatID = chatID.Int64
	return &u, nil
}

// CreateUser inserts a user and assigns its id.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO users (name, email, role, telegram_chat_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Role, u.TelegramChatID, u.Active, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	u.CreatedAt = now
	u.UpdatedAt = now
	return err
}
