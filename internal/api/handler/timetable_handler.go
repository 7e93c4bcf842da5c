package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/service"
	"schedule-board/backend/pkg/response"
)

// TimetableHandler 课表视图 HTTP 处理器
type TimetableHandler struct {
	timetableSvc service.TimetableViewService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableViewService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// GetTimetable 获取课表视图
// GET /api/v1/views/timetable?today_only=&title=
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	var q dto.TimetableViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	resp, err := h.timetableSvc.GetTimetable(c.Request.Context(), &q)
	if err != nil {
		h.handleTimetableError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *TimetableHandler) handleTimetableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimetableFetchFailed):
		response.BadGateway(c, response.CodeTimetableUnavailable, MsgTimetableUnavailable)
	default:
		response.InternalError(c)
	}
}
