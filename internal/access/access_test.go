package access

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

type stubDirectory struct {
	users         map[int64]*models.User
	professionals map[int64]*models.Professional
}

func (s *stubDirectory) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubDirectory) GetProfessionalByID(_ context.Context, id int64) (*models.Professional, error) {
	return s.professionals[id], nil
}

func TestCanManageSchedule(t *testing.T) {
	dir := &stubDirectory{
		users: map[int64]*models.User{
			1: {ID: 1, Role: models.RoleProfessional},
			2: {ID: 2, Role: models.RoleClient},
			3: {ID: 3, Role: models.RoleAdmin},
		},
		professionals: map[int64]*models.Professional{
			10: {ID: 10, UserID: 1},
		},
	}
	svc := NewService(dir, dir, zerolog.Nop())
	ctx := context.Background()

	t.Run("owner allowed", func(t *testing.T) {
		assert.NoError(t, svc.CanManageSchedule(ctx, 1, 10))
	})

	t.Run("admin allowed", func(t *testing.T) {
		assert.NoError(t, svc.CanManageSchedule(ctx, 3, 10))
	})

	t.Run("other user denied", func(t *testing.T) {
		err := svc.CanManageSchedule(ctx, 2, 10)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown caller denied", func(t *testing.T) {
		err := svc.CanManageSchedule(ctx, 99, 10)
		require.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("unknown professional denied", func(t *testing.T) {
		err := svc.CanManageSchedule(ctx, 1, 77)
		require.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestIsAdmin(t *testing.T) {
	dir := &stubDirectory{users: map[int64]*models.User{
		3: {ID: 3, Role: models.RoleAdmin},
		4: {ID: 4, Role: models.RoleClient},
	}}
	svc := NewService(dir, dir, zerolog.Nop())

	admin, err := svc.IsAdmin(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(context.Background(), 4)
	require.NoError(t, err)
	assert.False(t, admin)
}
