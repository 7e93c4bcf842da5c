package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/metrics"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/repository"
	"schedule-board/backend/pkg/clock"
)

// DBProvider 基于数据库的数据源
type DBProvider struct {
	repo   *repository.Repository
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewDBProvider 创建数据库数据源；loc 决定"今天"与日期落点
func NewDBProvider(repo *repository.Repository, clk clock.Clock, loc *time.Location, logger *zap.Logger) *DBProvider {
	if loc == nil {
		loc = time.Local
	}
	return &DBProvider{repo: repo, clock: clk, loc: loc, logger: logger}
}

func (p *DBProvider) GetBookings(ctx context.Context) ([]model.Booking, error) {
	start := time.Now()
	bookings, err := p.repo.Booking.List(ctx)
	metrics.ObserveProviderFetch(OpBookings, err, time.Since(start))
	if err != nil {
		return nil, fetchError(OpBookings, err)
	}
	return bookings, nil
}

// GetAllBookedTimeSlots 指定日期的占用时段：未取消的预约 + 该星期的课表条目
func (p *DBProvider) GetAllBookedTimeSlots(ctx context.Context, date string) ([]model.BookedSlot, error) {
	day, err := time.ParseInLocation(aggregate.DateLayout, date, p.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", aggregate.ErrInvalidDate, date)
	}

	start := time.Now()
	slots, err := p.bookedSlots(ctx, day)
	metrics.ObserveProviderFetch(OpBookedSlots, err, time.Since(start))
	if err != nil {
		return nil, fetchError(OpBookedSlots, err)
	}
	return slots, nil
}

func (p *DBProvider) bookedSlots(ctx context.Context, day time.Time) ([]model.BookedSlot, error) {
	bookings, err := p.repo.Booking.ListActiveBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	entries, err := p.repo.Timetable.ListByDay(ctx, aggregate.WeekdayOf(day))
	if err != nil {
		return nil, err
	}

	slots := make([]model.BookedSlot, 0, len(bookings)+len(entries))
	for _, b := range bookings {
		slots = append(slots, bookingSlot(b))
	}
	for _, e := range entries {
		slot, ok := aggregate.Materialize(e, day, p.loc)
		if !ok {
			p.logger.Warn("课表条目时间无法解析，已跳过",
				zap.String("entry_id", e.EntryID),
				zap.String("time_start", e.TimeStart),
				zap.String("time_end", e.TimeEnd),
			)
			continue
		}
		slots = append(slots, slot)
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots, nil
}

func (p *DBProvider) GetTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	start := time.Now()
	entries, err := p.repo.Timetable.List(ctx)
	metrics.ObserveProviderFetch(OpTimetable, err, time.Since(start))
	if err != nil {
		return nil, fetchError(OpTimetable, err)
	}
	return entries, nil
}

func (p *DBProvider) GetTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	today := aggregate.WeekdayOf(p.clock.Now().In(p.loc))

	start := time.Now()
	entries, err := p.repo.Timetable.ListByDay(ctx, today)
	metrics.ObserveProviderFetch(OpTodayTimetable, err, time.Since(start))
	if err != nil {
		return nil, fetchError(OpTodayTimetable, err)
	}
	return entries, nil
}

func bookingSlot(b model.Booking) model.BookedSlot {
	return model.BookedSlot{
		ID:           b.BookingID,
		Type:         model.SlotTypeBooking,
		ResourceID:   b.ResourceID,
		ResourceName: b.ResourceName,
		StartTime:    b.StartTime,
		EndTime:      b.EndTime,
		UserName:     b.UserName,
		Purpose:      b.Purpose,
		Status:       b.Status,
	}
}
