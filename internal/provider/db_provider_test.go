package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/repository"
	"schedule-board/backend/pkg/clock"
)

// ── Mock Repositories ──

type mockBookingRepo struct {
	bookings []model.Booking
	err      error

	from, to time.Time
}

func (m *mockBookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	return m.bookings, m.err
}

func (m *mockBookingRepo) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	m.from, m.to = from, to
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Booking
	for _, b := range m.bookings {
		if !b.StartTime.Before(from) && b.StartTime.Before(to) && b.Status != model.BookingStatusCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockTimetableRepo struct {
	entries []model.TimetableEntry
	err     error

	lastDay model.Weekday
}

func (m *mockTimetableRepo) List(ctx context.Context) ([]model.TimetableEntry, error) {
	return m.entries, m.err
}

func (m *mockTimetableRepo) ListByDay(ctx context.Context, day model.Weekday) ([]model.TimetableEntry, error) {
	m.lastDay = day
	if m.err != nil {
		return nil, m.err
	}
	var out []model.TimetableEntry
	for _, e := range m.entries {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestDBProvider(t *testing.T, b *mockBookingRepo, tt *mockTimetableRepo, now time.Time) *DBProvider {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)
	repo := &repository.Repository{Booking: b, Timetable: tt}
	return NewDBProvider(repo, clock.NewMockClock(now), loc, zap.NewNop())
}

// ── Tests ──

func TestDBProvider_GetAllBookedTimeSlots(t *testing.T) {
	// 2024-05-01 为周三；上海时区当天 = [04-30T16:00Z, 05-01T16:00Z)
	bookings := &mockBookingRepo{bookings: []model.Booking{
		{BookingID: "b1", UserName: "Alice", Status: model.BookingStatusConfirmed,
			StartTime: time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC)},
		{BookingID: "b2", Status: model.BookingStatusCancelled,
			StartTime: time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)},
		{BookingID: "b3", Status: model.BookingStatusPending,
			StartTime: time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)},
	}}
	timetable := &mockTimetableRepo{entries: []model.TimetableEntry{
		{EntryID: "t1", Day: model.Wednesday, TimeStart: "08:00:00", TimeEnd: "09:30:00", SubjectCode: "CS101"},
		{EntryID: "t2", Day: model.Thursday, TimeStart: "08:00:00", TimeEnd: "09:30:00", SubjectCode: "MA201"},
		{EntryID: "t3", Day: model.Wednesday, TimeStart: "bad", TimeEnd: "09:30:00", SubjectCode: "XX"},
	}}
	p := newTestDBProvider(t, bookings, timetable, time.Now())

	slots, err := p.GetAllBookedTimeSlots(context.Background(), "2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, model.Wednesday, timetable.lastDay)
	assert.True(t, bookings.from.Equal(time.Date(2024, 4, 30, 16, 0, 0, 0, time.UTC)))
	assert.True(t, bookings.to.Equal(time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)))

	require.Len(t, slots, 2)
	// 08:00 上海 = 00:00Z，早于 b1 的 03:00Z
	assert.Equal(t, "t1", slots[0].ID)
	assert.Equal(t, model.SlotTypeTimetable, slots[0].Type)
	assert.Equal(t, "b1", slots[1].ID)
	assert.Equal(t, model.SlotTypeBooking, slots[1].Type)
	assert.Equal(t, "Alice", slots[1].UserName)
}

func TestDBProvider_GetAllBookedTimeSlots_InvalidDate(t *testing.T) {
	p := newTestDBProvider(t, &mockBookingRepo{}, &mockTimetableRepo{}, time.Now())

	_, err := p.GetAllBookedTimeSlots(context.Background(), "2024/05/01")
	assert.ErrorIs(t, err, aggregate.ErrInvalidDate)
	assert.NotErrorIs(t, err, ErrFetchFailed)
}

func TestDBProvider_GetTodayTimetable_UsesConfiguredZone(t *testing.T) {
	timetable := &mockTimetableRepo{entries: []model.TimetableEntry{
		{EntryID: "fri", Day: model.Friday},
		{EntryID: "sat", Day: model.Saturday},
	}}
	// 周五 20:00Z = 上海周六 04:00
	now := time.Date(2024, 5, 3, 20, 0, 0, 0, time.UTC)
	p := newTestDBProvider(t, &mockBookingRepo{}, timetable, now)

	entries, err := p.GetTodayTimetable(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sat", entries[0].EntryID)
}

func TestDBProvider_ErrorsAreFetchFailures(t *testing.T) {
	boom := errors.New("connection refused")
	p := newTestDBProvider(t, &mockBookingRepo{err: boom}, &mockTimetableRepo{err: boom}, time.Now())
	ctx := context.Background()

	_, err := p.GetBookings(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, boom)

	_, err = p.GetAllBookedTimeSlots(ctx, "2024-05-01")
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, err = p.GetTimetable(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, err = p.GetTodayTimetable(ctx)
	assert.ErrorIs(t, err, ErrFetchFailed)
}
