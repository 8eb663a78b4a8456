package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// GetProfessionalByID returns the professional or nil when absent.
func (db *DB) GetProfessionalByID(ctx context.Context, id int64) (*models.Professional, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, name, bio, postal_code, street, city, state, active, created_at, updated_at
		FROM professionals
		WHERE id = ?`, id)

	p, err := scanProfessional(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// ListActiveProfessionals returns all active professionals ordered by name.
func (db *DB) ListActiveProfessionals(ctx context.Context) ([]models.Professional, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, bio, postal_code, street, city, state, active, created_at, updated_at
		FROM professionals
		WHERE active = 1
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreateProfessional inserts a professional and assigns its id.
func (db *DB) CreateProfessional(ctx context.Context, p *models.Professional) error {
	if p == nil {
		return fmt.Errorf("professional is nil")
	}
	now := time.Now()
	res, err := db.ExecContext(ctx, `
		INSERT INTO professionals (user_id, name, bio, postal_code, street, city, state, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.Name, p.Bio, p.PostalCode, p.Street, p.City, p.State, p.Active, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert professional: %w", err)
	}
	p.ID, err = res.LastInsertId()
	p.CreatedAt = now
	p.UpdatedAt = now
	return err
}

// UpdateProfessionalAddress stores the postal lookup result on the profile.
func (db *DB) UpdateProfessionalAddress(ctx context.Context, id int64, postalCode, street, city, state string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE professionals
		SET postal_code = ?, street = ?, city = ?, state = ?, updated_at = ?
		WHERE id = ?`,
		postalCode, street, city, state, time.Now(), id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfessional(row rowScanner) (*models.Professional, error) {
	var p models.Professional
	var bio, postal, street, city, state sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &bio, &postal, &street, &city, &state,
		&p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Bio = bio.String
	p.PostalCode = postal.String
	p.Street = street.String
	p.City = city.String
	p.State = state.String
	return &p, nil
}
