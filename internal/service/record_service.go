package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
)

var ErrRecordsFetchFailed = errors.New("记录数据加载失败")

// RecordService 原始记录接口，供远程视图客户端取数
type RecordService interface {
	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListBookedSlots(ctx context.Context, date string) ([]model.BookedSlot, error)
	ListTimetable(ctx context.Context) ([]model.TimetableEntry, error)
	ListTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error)
}

type recordService struct {
	src    provider.Provider
	logger *zap.Logger
}

// NewRecordService 创建 RecordService 实例
func NewRecordService(src provider.Provider, logger *zap.Logger) RecordService {
	return &recordService{src: src, logger: logger}
}

func (s *recordService) ListBookings(ctx context.Context) ([]model.Booking, error) {
	bookings, err := s.src.GetBookings(ctx)
	if err != nil {
		return nil, s.fail(provider.OpBookings, err)
	}
	return nonNil(bookings), nil
}

func (s *recordService) ListBookedSlots(ctx context.Context, date string) ([]model.BookedSlot, error) {
	if date == "" {
		return nil, fmt.Errorf("%w: 缺少日期", aggregate.ErrInvalidDate)
	}
	if err := aggregate.ValidateDate(date); err != nil {
		return nil, err
	}
	slots, err := s.src.GetAllBookedTimeSlots(ctx, date)
	if err != nil {
		return nil, s.fail(provider.OpBookedSlots, err)
	}
	return nonNil(slots), nil
}

func (s *recordService) ListTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	entries, err := s.src.GetTimetable(ctx)
	if err != nil {
		return nil, s.fail(provider.OpTimetable, err)
	}
	return nonNil(entries), nil
}

func (s *recordService) ListTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	entries, err := s.src.GetTodayTimetable(ctx)
	if err != nil {
		return nil, s.fail(provider.OpTodayTimetable, err)
	}
	return nonNil(entries), nil
}

func (s *recordService) fail(op string, err error) error {
	s.logger.Error("获取记录失败", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %w", ErrRecordsFetchFailed, err)
}

// nonNil 空结果序列化为 [] 而非 null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
