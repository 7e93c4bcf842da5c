package service

import (
	"context"
	"sync"

	"schedule-board/backend/internal/model"
)

// ── Mock Provider ──

type mockProvider struct {
	mu sync.Mutex

	bookings  []model.Booking
	slots     map[string][]model.BookedSlot
	timetable []model.TimetableEntry
	today     []model.TimetableEntry

	err   error
	calls map[string]int
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		slots: make(map[string][]model.BookedSlot),
		calls: make(map[string]int),
	}
}

func (m *mockProvider) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	return m.err
}

func (m *mockProvider) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockProvider) GetBookings(_ context.Context) ([]model.Booking, error) {
	if err := m.record("bookings"); err != nil {
		return nil, err
	}
	return m.bookings, nil
}

func (m *mockProvider) GetAllBookedTimeSlots(_ context.Context, date string) ([]model.BookedSlot, error) {
	if err := m.record("slots"); err != nil {
		return nil, err
	}
	return m.slots[date], nil
}

func (m *mockProvider) GetTimetable(_ context.Context) ([]model.TimetableEntry, error) {
	if err := m.record("timetable"); err != nil {
		return nil, err
	}
	return m.timetable, nil
}

func (m *mockProvider) GetTodayTimetable(_ context.Context) ([]model.TimetableEntry, error) {
	if err := m.record("today"); err != nil {
		return nil, err
	}
	return m.today, nil
}
