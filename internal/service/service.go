package service

import (
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/internal/provider"
	"schedule-board/backend/pkg/clock"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Schedule  ScheduleViewService
	Timetable TimetableViewService
	Record    RecordService
	Export    ExportService
}

// NewService 创建 Service 聚合
// loc 为计算日历日期与"今天"所用的时区
func NewService(
	src provider.Provider,
	clk clock.Clock,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	schedule := NewScheduleViewService(src, clk, loc, logger)
	timetable := NewTimetableViewService(src, logger)
	return &Service{
		Schedule:  schedule,
		Timetable: timetable,
		Record:    NewRecordService(src, logger),
		Export:    NewExportService(schedule, src, clk, loc, logger),
	}
}
