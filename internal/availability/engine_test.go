package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
	"github.com/Vmp3/Inkspiration-sub001/internal/schedule"
)

// stubSources backs the engine with canned lookups.
type stubSources struct {
	prof         *models.Professional
	profErr      error
	raw          []byte
	hasSchedule  bool
	schedErr     error
	appointments []models.Appointment
	apptErr      error
}

func (s *stubSources) GetProfessionalByID(_ context.Context, _ int64) (*models.Professional, error) {
	return s.prof, s.profErr
}

func (s *stubSources) GetScheduleRaw(_ context.Context, _ int64) ([]byte, bool, error) {
	return s.raw, s.hasSchedule, s.schedErr
}

func (s *stubSources) FindActiveAppointments(_ context.Context, _ int64, _, _ time.Time) ([]models.Appointment, error) {
	return s.appointments, s.apptErr
}

const splitWeekSchedule = `{"Monday":[{"start":"08:00","end":"11:59"},{"start":"13:00","end":"18:00"}]}`

var (
	// 2025-06-02 is a Monday, 2025-06-08 a Sunday.
	monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
	sunday = time.Date(2025, 6, 8, 0, 0, 0, 0, time.Local)
	// A "now" far in the past keeps today-filtering out of unrelated tests.
	farPast = FixedClock{Instant: time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local)}
)

func newTestEngine(src *stubSources, clock Clock) *Engine {
	return NewEngine(src, src, src, clock, zerolog.Nop())
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func TestStartTimes(t *testing.T) {
	tests := []struct {
		name         string
		scheduleText string
		date         time.Time
		duration     time.Duration
		appointments []models.Appointment
		clock        Clock
		want         []string
	}{
		{
			name:         "split day with two hour service",
			scheduleText: splitWeekSchedule,
			date:         monday,
			duration:     2 * time.Hour,
			want:         []string{"08:00", "09:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:         "active booking removes overlapping slots",
			scheduleText: splitWeekSchedule,
			date:         monday,
			duration:     2 * time.Hour,
			appointments: []models.Appointment{
				{StartTime: at(monday, 9, 0), EndTime: at(monday, 11, 0), Status: models.StatusConfirmed},
			},
			want: []string{"13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:         "booking ending at slot start does not conflict",
			scheduleText: `{"Monday":[{"start":"13:00","end":"18:00"}]}`,
			date:         monday,
			duration:     2 * time.Hour,
			appointments: []models.Appointment{
				{StartTime: at(monday, 12, 0), EndTime: at(monday, 13, 0), Status: models.StatusConfirmed},
				{StartTime: at(monday, 16, 0), EndTime: at(monday, 18, 0), Status: models.StatusConfirmed},
			},
			want: []string{"13:00", "14:00"},
		},
		{
			name:         "day without configured hours is empty not error",
			scheduleText: splitWeekSchedule,
			date:         sunday,
			duration:     2 * time.Hour,
			want:         []string{},
		},
		{
			name:         "adjacent periods consolidate across noon",
			scheduleText: `{"Monday":[{"start":"08:00","end":"11:59"},{"start":"12:00","end":"16:00"}]}`,
			date:         monday,
			duration:     2 * time.Hour,
			want:         []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00"},
		},
		{
			name:         "same day query drops past slots",
			scheduleText: splitWeekSchedule,
			date:         monday,
			duration:     2 * time.Hour,
			clock:        FixedClock{Instant: at(monday, 13, 30)},
			want:         []string{"14:00", "15:00", "16:00"},
		},
		{
			name:         "slot starting exactly now is kept",
			scheduleText: splitWeekSchedule,
			date:         monday,
			duration:     2 * time.Hour,
			clock:        FixedClock{Instant: at(monday, 14, 0)},
			want:         []string{"14:00", "15:00", "16:00"},
		},
		{
			name:         "future date ignores current time of day",
			scheduleText: splitWeekSchedule,
			date:         monday,
			duration:     2 * time.Hour,
			clock:        FixedClock{Instant: at(monday.AddDate(0, 0, -7), 23, 0)},
			want:         []string{"08:00", "09:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:         "period ending 23:59 fits a slot running to midnight",
			scheduleText: `{"Monday":[{"start":"18:00","end":"23:59"}]}`,
			date:         monday,
			duration:     6 * time.Hour,
			want:         []string{"18:00"},
		},
		{
			name:         "duration longer than every span",
			scheduleText: splitWeekSchedule,
			date:         monday,
			duration:     6 * time.Hour,
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := tt.clock
			if clock == nil {
				clock = farPast
			}
			src := &stubSources{
				prof:         &models.Professional{ID: 1, Active: true},
				raw:          []byte(tt.scheduleText),
				hasSchedule:  true,
				appointments: tt.appointments,
			}
			engine := newTestEngine(src, clock)

			got, err := engine.StartTimes(context.Background(), 1, tt.date, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartTimes_Errors(t *testing.T) {
	t.Run("professional not found", func(t *testing.T) {
		engine := newTestEngine(&stubSources{}, farPast)
		_, err := engine.StartTimes(context.Background(), 42, monday, 2*time.Hour)
		assert.ErrorIs(t, err, ErrProfessionalNotFound)
	})

	t.Run("schedule never registered", func(t *testing.T) {
		src := &stubSources{prof: &models.Professional{ID: 1}}
		engine := newTestEngine(src, farPast)
		_, err := engine.StartTimes(context.Background(), 1, monday, 2*time.Hour)
		assert.ErrorIs(t, err, ErrScheduleNotRegistered)
	})

	t.Run("corrupt stored schedule", func(t *testing.T) {
		src := &stubSources{prof: &models.Professional{ID: 1}, raw: []byte("{oops"), hasSchedule: true}
		engine := newTestEngine(src, farPast)
		_, err := engine.StartTimes(context.Background(), 1, monday, 2*time.Hour)
		assert.ErrorIs(t, err, schedule.ErrScheduleFormat)
	})

	t.Run("appointment source failure propagates", func(t *testing.T) {
		src := &stubSources{
			prof:        &models.Professional{ID: 1},
			raw:         []byte(splitWeekSchedule),
			hasSchedule: true,
			apptErr:     errors.New("db gone"),
		}
		engine := newTestEngine(src, farPast)
		_, err := engine.StartTimes(context.Background(), 1, monday, 2*time.Hour)
		assert.Error(t, err)
	})
}

func TestStartTimesForService(t *testing.T) {
	src := &stubSources{
		prof:        &models.Professional{ID: 1},
		raw:         []byte(splitWeekSchedule),
		hasSchedule: true,
	}
	engine := newTestEngine(src, farPast)

	t.Run("resolves token duration", func(t *testing.T) {
		got, err := engine.StartTimesForService(context.Background(), 1, monday, ServiceSmallTattoo)
		require.NoError(t, err)
		assert.Equal(t, []string{"08:00", "09:00", "13:00", "14:00", "15:00", "16:00"}, got)
	})

	t.Run("rejects unknown token listing valid ones", func(t *testing.T) {
		_, err := engine.StartTimesForService(context.Background(), 1, monday, "gigantic")
		var invalid *InvalidServiceTypeError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "gigantic", invalid.Token)
		for _, token := range ServiceTypes() {
			assert.Contains(t, err.Error(), token)
		}
	})

	t.Run("wraps decode failures as query errors", func(t *testing.T) {
		bad := &stubSources{prof: &models.Professional{ID: 7}, raw: []byte("###"), hasSchedule: true}
		badEngine := newTestEngine(bad, farPast)
		_, err := badEngine.StartTimesForService(context.Background(), 7, monday, ServiceSmallTattoo)
		require.Error(t, err)
		assert.ErrorIs(t, err, schedule.ErrScheduleFormat)
		assert.Contains(t, err.Error(), "availability query")
	})
}

func TestStartTimes_OrderAndFitInvariants(t *testing.T) {
	src := &stubSources{
		prof:        &models.Professional{ID: 1},
		raw:         []byte(splitWeekSchedule),
		hasSchedule: true,
	}
	engine := newTestEngine(src, farPast)

	for _, hours := range []int{1, 2, 3, 4, 5} {
		got, err := engine.StartTimes(context.Background(), 1, monday, time.Duration(hours)*time.Hour)
		require.NoError(t, err)

		prev := -1
		for _, s := range got {
			start, err := schedule.ParseClock(s)
			require.NoError(t, err)
			assert.Greater(t, start, prev, "results must be chronological")
			prev = start

			end := start + hours*60
			fits := (start >= 480 && end <= 719) || (start >= 780 && end <= 1080)
			assert.True(t, fits, "slot %s+%dh must fit a period", s, hours)
		}
	}
}

func TestIsWithinWorkingHours(t *testing.T) {
	src := &stubSources{
		prof:        &models.Professional{ID: 1},
		raw:         []byte(`{"Monday":[{"start":"08:00","end":"18:00"}]}`),
		hasSchedule: true,
	}
	engine := newTestEngine(src, farPast)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"interval strictly inside", at(monday, 10, 0), at(monday, 12, 0), true},
		{"exact period bounds are inclusive", at(monday, 8, 0), at(monday, 18, 0), true},
		{"ending exactly at period end", at(monday, 17, 0), at(monday, 18, 0), true},
		{"starting one minute early", at(monday, 7, 59), at(monday, 18, 0), false},
		{"ending one minute late", at(monday, 17, 0), at(monday, 18, 1), false},
		{"end not after start", at(monday, 10, 0), at(monday, 10, 0), false},
		{"end before start", at(monday, 12, 0), at(monday, 10, 0), false},
		{"day without periods", at(sunday, 10, 0), at(sunday, 12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.IsWithinWorkingHours(ctx, 1, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsWithinWorkingHours_MergedAndLateSpans(t *testing.T) {
	ctx := context.Background()

	t.Run("interval spanning adjacent periods", func(t *testing.T) {
		src := &stubSources{
			prof:        &models.Professional{ID: 1},
			raw:         []byte(`{"Monday":[{"start":"08:00","end":"11:59"},{"start":"12:00","end":"16:00"}]}`),
			hasSchedule: true,
		}
		engine := newTestEngine(src, farPast)

		ok, err := engine.IsWithinWorkingHours(ctx, 1, at(monday, 10, 0), at(monday, 14, 0))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("23:59 period accepts interval to midnight", func(t *testing.T) {
		src := &stubSources{
			prof:        &models.Professional{ID: 1},
			raw:         []byte(`{"Monday":[{"start":"18:00","end":"23:59"}]}`),
			hasSchedule: true,
		}
		engine := newTestEngine(src, farPast)

		ok, err := engine.IsWithinWorkingHours(ctx, 1, at(monday, 20, 0), at(monday, 23, 59))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = engine.IsWithinWorkingHours(ctx, 1, at(monday, 20, 0), at(monday, 0, 0).AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("resolution errors surface as errors not false", func(t *testing.T) {
		engine := newTestEngine(&stubSources{}, farPast)
		_, err := engine.IsWithinWorkingHours(ctx, 99, at(monday, 10, 0), at(monday, 11, 0))
		assert.ErrorIs(t, err, ErrProfessionalNotFound)
	})
}

func TestDurationHours(t *testing.T) {
	tests := []struct {
		token string
		hours int
	}{
		{ServiceSmallTattoo, 2},
		{ServiceMediumTattoo, 4},
		{ServiceFullSession, 6},
		{ServiceLargeTattoo, 8},
	}
	for _, tt := range tests {
		got, err := DurationHours(tt.token)
		require.NoError(t, err)
		assert.Equal(t, tt.hours, got)
	}

	_, err := DurationHours("nope")
	var invalid *InvalidServiceTypeError
	assert.ErrorAs(t, err, &invalid)
}
