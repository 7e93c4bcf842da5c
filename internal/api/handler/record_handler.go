package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/service"
	"schedule-board/backend/pkg/response"
)

// RecordHandler 原始记录 HTTP 处理器，响应体即远程数据源的数据格式
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

// ListBookings 全部预约
// GET /api/v1/bookings
func (h *RecordHandler) ListBookings(c *gin.Context) {
	bookings, err := h.recordSvc.ListBookings(c.Request.Context())
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, bookings)
}

// ListBookedSlots 某一天的占用时段
// GET /api/v1/bookings/booked-slots?date=YYYY-MM-DD
func (h *RecordHandler) ListBookedSlots(c *gin.Context) {
	var q dto.BookedSlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeInvalidDate, "缺少 date 参数")
		return
	}

	slots, err := h.recordSvc.ListBookedSlots(c.Request.Context(), q.Date)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, slots)
}

// ListTimetable 周课表
// GET /api/v1/timetable
func (h *RecordHandler) ListTimetable(c *gin.Context) {
	entries, err := h.recordSvc.ListTimetable(c.Request.Context())
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, entries)
}

// ListTodayTimetable 今日课表
// GET /api/v1/timetable/today
func (h *RecordHandler) ListTodayTimetable(c *gin.Context) {
	entries, err := h.recordSvc.ListTodayTimetable(c.Request.Context())
	if err != nil {
		h.handleRecordError(c, err)
		return
	}
	response.OK(c, entries)
}

func (h *RecordHandler) handleRecordError(c *gin.Context, err error) {
	if handleQueryError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrRecordsFetchFailed):
		response.BadGateway(c, response.CodeRecordsUnavailable, MsgRecordsUnavailable)
	default:
		response.InternalError(c)
	}
}
