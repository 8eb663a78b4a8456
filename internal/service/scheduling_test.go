package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Vmp3/Inkspiration-sub001/internal/availability"
	"github.com/Vmp3/Inkspiration-sub001/internal/events"
	"github.com/Vmp3/Inkspiration-sub001/internal/models"
	"github.com/Vmp3/Inkspiration-sub001/internal/schedule"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetProfessionalByID(ctx context.Context, id int64) (*models.Professional, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Professional), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) SaveScheduleRaw(ctx context.Context, professionalID int64, text []byte) error {
	args := m.Called(ctx, professionalID, text)
	return args.Error(0)
}

func (m *mockStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = 101
	}
	return args.Error(0)
}

func (m *mockStore) GetAppointmentByID(ctx context.Context, id int64) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateAppointmentStatus(ctx context.Context, id, version int64, status string) error {
	args := m.Called(ctx, id, version, status)
	return args.Error(0)
}

func (m *mockStore) ListAppointmentsByProfessional(ctx context.Context, professionalID int64, from, to time.Time) ([]models.Appointment, error) {
	args := m.Called(ctx, professionalID, from, to)
	if a := args.Get(0); a != nil {
		return a.([]models.Appointment), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) StartTimes(ctx context.Context, professionalID int64, date time.Time, duration time.Duration) ([]string, error) {
	args := m.Called(ctx, professionalID, date, duration)
	if t := args.Get(0); t != nil {
		return t.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEngine) StartTimesForService(ctx context.Context, professionalID int64, date time.Time, serviceType string) ([]string, error) {
	args := m.Called(ctx, professionalID, date, serviceType)
	if t := args.Get(0); t != nil {
		return t.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEngine) IsWithinWorkingHours(ctx context.Context, professionalID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, professionalID, start, end)
	return args.Bool(0), args.Error(1)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) CanManageSchedule(ctx context.Context, callerID, professionalID int64) error {
	args := m.Called(ctx, callerID, professionalID)
	return args.Error(0)
}

type mockReminders struct {
	mock.Mock
}

func (m *mockReminders) ScheduleForAppointment(ctx context.Context, a *models.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockReminders) CancelForAppointment(ctx context.Context, appointmentID int64) error {
	args := m.Called(ctx, appointmentID)
	return args.Error(0)
}

func newTestService(store Store, engine AvailabilityEngine, auth Authorizer, rem ReminderPlanner, bus *events.Bus) *Scheduling {
	return NewScheduling(store, engine, auth, rem, bus, zerolog.Nop())
}

func TestSubmitSchedule(t *testing.T) {
	ctx := context.Background()
	input := schedule.Input{
		"Monday": {{Start: "08:00", End: "11:59"}, {Start: "13:00", End: "18:00"}},
	}

	t.Run("stores valid schedule and publishes event", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetProfessionalByID", ctx, int64(10)).Return(&models.Professional{ID: 10}, nil)
		store.On("SaveScheduleRaw", ctx, int64(10), mock.Anything).Return(nil)

		bus := events.NewBus()
		var published int
		bus.Subscribe(events.TypeScheduleUpdated, func(events.Event) error {
			published++
			return nil
		})

		svc := newTestService(store, new(mockEngine), new(mockAuthorizer), nil, bus)
		require.NoError(t, svc.SubmitSchedule(ctx, 10, input))

		store.AssertExpectations(t)
		assert.Equal(t, 1, published)
	})

	t.Run("unknown professional", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetProfessionalByID", ctx, int64(99)).Return(nil, nil)

		svc := newTestService(store, new(mockEngine), new(mockAuthorizer), nil, nil)
		err := svc.SubmitSchedule(ctx, 99, input)
		require.ErrorIs(t, err, availability.ErrProfessionalNotFound)
		store.AssertNotCalled(t, "SaveScheduleRaw", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid schedule is rejected before storage", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetProfessionalByID", ctx, int64(10)).Return(&models.Professional{ID: 10}, nil)

		svc := newTestService(store, new(mockEngine), new(mockAuthorizer), nil, nil)
		err := svc.SubmitSchedule(ctx, 10, schedule.Input{
			"Monday": {{Start: "10:00", End: "09:00"}},
		})
		require.ErrorIs(t, err, schedule.ErrEndBeforeStart)
		store.AssertNotCalled(t, "SaveScheduleRaw", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSubmitScheduleWithAuthorization(t *testing.T) {
	ctx := context.Background()
	input := schedule.Input{"Tuesday": {{Start: "09:00", End: "11:00"}}}

	t.Run("denied caller never reaches storage", func(t *testing.T) {
		auth := new(mockAuthorizer)
		auth.On("CanManageSchedule", ctx, int64(2), int64(10)).Return(assert.AnError)

		store := new(mockStore)
		svc := newTestService(store, new(mockEngine), auth, nil, nil)

		err := svc.SubmitScheduleWithAuthorization(ctx, 2, 10, input)
		require.Error(t, err)
		store.AssertNotCalled(t, "GetProfessionalByID", mock.Anything, mock.Anything)
	})

	t.Run("authorized caller proceeds", func(t *testing.T) {
		auth := new(mockAuthorizer)
		auth.On("CanManageSchedule", ctx, int64(1), int64(10)).Return(nil)

		store := new(mockStore)
		store.On("GetProfessionalByID", ctx, int64(10)).Return(&models.Professional{ID: 10}, nil)
		store.On("SaveScheduleRaw", ctx, int64(10), mock.Anything).Return(nil)

		svc := newTestService(store, new(mockEngine), auth, nil, nil)
		require.NoError(t, svc.SubmitScheduleWithAuthorization(ctx, 1, 10, input))
		store.AssertExpectations(t)
	})
}

func TestBookAppointment(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	t.Run("books inside working hours", func(t *testing.T) {
		engine := new(mockEngine)
		engine.On("IsWithinWorkingHours", ctx, int64(10), start, start.Add(2*time.Hour)).Return(true, nil)

		store := new(mockStore)
		store.On("CreateAppointment", ctx, mock.Anything).Return(nil)

		rem := new(mockReminders)
		rem.On("ScheduleForAppointment", ctx, mock.Anything).Return(nil)

		bus := events.NewBus()
		var published int
		bus.Subscribe(events.TypeAppointmentCreated, func(events.Event) error {
			published++
			return nil
		})

		svc := newTestService(store, engine, new(mockAuthorizer), rem, bus)
		appt, err := svc.BookAppointment(ctx, BookingRequest{
			ProfessionalID: 10, ClientID: 7, ServiceType: "small", StartTime: start,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(101), appt.ID)
		assert.NotEmpty(t, appt.Reference)
		assert.Equal(t, models.StatusPending, appt.Status)
		assert.Equal(t, start.Add(2*time.Hour), appt.EndTime)
		assert.Equal(t, 1, published)
		rem.AssertExpectations(t)
	})

	t.Run("rejects interval outside working hours", func(t *testing.T) {
		engine := new(mockEngine)
		engine.On("IsWithinWorkingHours", ctx, int64(10), start, start.Add(8*time.Hour)).Return(false, nil)

		store := new(mockStore)
		svc := newTestService(store, engine, new(mockAuthorizer), nil, nil)

		_, err := svc.BookAppointment(ctx, BookingRequest{
			ProfessionalID: 10, ClientID: 7, ServiceType: "large", StartTime: start,
		})
		require.ErrorIs(t, err, ErrOutsideWorkingHours)
		store.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown service type", func(t *testing.T) {
		svc := newTestService(new(mockStore), new(mockEngine), new(mockAuthorizer), nil, nil)
		_, err := svc.BookAppointment(ctx, BookingRequest{
			ProfessionalID: 10, ClientID: 7, ServiceType: "gigantic", StartTime: start,
		})
		var invalid *availability.InvalidServiceTypeError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "gigantic", invalid.Token)
	})
}

func TestCancelAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels active appointment", func(t *testing.T) {
		appt := &models.Appointment{ID: 5, Status: models.StatusConfirmed, Version: 3}
		store := new(mockStore)
		store.On("GetAppointmentByID", ctx, int64(5)).Return(appt, nil)
		store.On("UpdateAppointmentStatus", ctx, int64(5), int64(3), models.StatusCanceled).Return(nil)

		rem := new(mockReminders)
		rem.On("CancelForAppointment", ctx, int64(5)).Return(nil)

		svc := newTestService(store, new(mockEngine), new(mockAuthorizer), rem, nil)
		require.NoError(t, svc.CancelAppointment(ctx, 5))
		store.AssertExpectations(t)
		rem.AssertExpectations(t)
	})

	t.Run("canceling an already canceled appointment is a no-op", func(t *testing.T) {
		appt := &models.Appointment{ID: 5, Status: models.StatusCanceled, Version: 4}
		store := new(mockStore)
		store.On("GetAppointmentByID", ctx, int64(5)).Return(appt, nil)

		svc := newTestService(store, new(mockEngine), new(mockAuthorizer), nil, nil)
		require.NoError(t, svc.CancelAppointment(ctx, 5))
		store.AssertNotCalled(t, "UpdateAppointmentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		store := new(mockStore)
		store.On("GetAppointmentByID", ctx, int64(404)).Return(nil, nil)

		svc := newTestService(store, new(mockEngine), new(mockAuthorizer), nil, nil)
		require.Error(t, svc.CancelAppointment(ctx, 404))
	})
}

func TestGetAvailabilityDelegates(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	engine := new(mockEngine)
	engine.On("StartTimesForService", ctx, int64(10), date, "small").
		Return([]string{"08:00", "09:00"}, nil)

	svc := newTestService(new(mockStore), engine, new(mockAuthorizer), nil, nil)
	times, err := svc.GetAvailabilityForService(ctx, 10, date, "small")
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "09:00"}, times)
}
