package provider

import (
	"context"
	"errors"
	"fmt"

	"schedule-board/backend/internal/model"
)

// ErrFetchFailed 任何数据源失败在调用方看来都是同一种错误
var ErrFetchFailed = errors.New("获取数据失败")

// Provider 日程与课表数据源
type Provider interface {
	GetBookings(ctx context.Context) ([]model.Booking, error)
	// GetAllBookedTimeSlots date 为 YYYY-MM-DD
	GetAllBookedTimeSlots(ctx context.Context, date string) ([]model.BookedSlot, error)
	GetTimetable(ctx context.Context) ([]model.TimetableEntry, error)
	GetTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error)
}

// 操作名，用于日志与指标
const (
	OpBookings       = "bookings"
	OpBookedSlots    = "booked_slots"
	OpTimetable      = "timetable"
	OpTodayTimetable = "today_timetable"
)

func fetchError(op string, err error) error {
	if errors.Is(err, ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrFetchFailed, op, err)
}
