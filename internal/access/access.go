// Package access decides who may manage a professional's data.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// ErrAccessDenied is returned when the caller may not perform an action.
var ErrAccessDenied = errors.New("access denied")

// UserSource resolves platform accounts. A nil user means absent.
type UserSource interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// ProfessionalSource resolves professionals. A nil professional means
// absent.
type ProfessionalSource interface {
	GetProfessionalByID(ctx context.Context, id int64) (*models.Professional, error)
}

// Service answers authorization questions for schedule management.
type Service struct {
	users         UserSource
	professionals ProfessionalSource
	logger        zerolog.Logger
}

// NewService creates an access control service.
func NewService(users UserSource, professionals ProfessionalSource, logger zerolog.Logger) *Service {
	return &Service{
		users:         users,
		professionals: professionals,
		logger:        logger.With().Str("component", "access").Logger(),
	}
}

// CanManageSchedule checks that the caller owns the professional profile
// or is an admin. Returns ErrAccessDenied otherwise.
func (s *Service) CanManageSchedule(ctx context.Context, callerID, professionalID int64) error {
	user, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return fmt.Errorf("resolve caller %d: %w", callerID, err)
	}
	if user == nil {
		return fmt.Errorf("caller %d: %w", callerID, ErrAccessDenied)
	}
	if user.IsAdmin() {
		return nil
	}

	pro, err := s.professionals.GetProfessionalByID(ctx, professionalID)
	if err != nil {
		return fmt.Errorf("resolve professional %d: %w", professionalID, err)
	}
	if pro == nil || pro.UserID != callerID {
		s.logger.Warn().
			Int64("caller_id", callerID).
			Int64("professional_id", professionalID).
			Msg("schedule management denied")
		return fmt.Errorf("caller %d is not the owner of professional %d: %w",
			callerID, professionalID, ErrAccessDenied)
	}
	return nil
}

// IsAdmin reports whether the caller has the admin role.
func (s *Service) IsAdmin(ctx context.Context, callerID int64) (bool, error) {
	user, err := s.users.GetUserByID(ctx, callerID)
	if err != nil {
		return false, fmt.Errorf("resolve caller %d: %w", callerID, err)
	}
	return user != nil && user.IsAdmin(), nil
}
