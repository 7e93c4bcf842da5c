package handler

import "schedule-board/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Schedule  *ScheduleHandler
	Timetable *TimetableHandler
	Record    *RecordHandler
	Export    *ExportHandler
	Health    *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, health *HealthHandler) *Handler {
	return &Handler{
		Schedule:  NewScheduleHandler(svc.Schedule),
		Timetable: NewTimetableHandler(svc.Timetable),
		Record:    NewRecordHandler(svc.Record),
		Export:    NewExportHandler(svc.Export),
		Health:    health,
	}
}
