package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/service"
	"schedule-board/backend/pkg/response"
)

// ScheduleHandler 日程视图 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleViewService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleViewService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// GetSchedule 获取日程视图
// GET /api/v1/views/schedule?user_id=&date=&filter=&title=&show_filters=
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	var q dto.ScheduleViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	h.respond(c, &q)
}

// GetMySchedule 获取当前用户的日程视图
// GET /api/v1/views/schedule/me
func (h *ScheduleHandler) GetMySchedule(c *gin.Context) {
	var q dto.ScheduleViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	q.UserID = userID

	h.respond(c, &q)
}

func (h *ScheduleHandler) respond(c *gin.Context, q *dto.ScheduleViewQuery) {
	resp, err := h.scheduleSvc.GetSchedule(c.Request.Context(), q)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, resp)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	if handleQueryError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrScheduleFetchFailed):
		response.BadGateway(c, response.CodeScheduleUnavailable, MsgScheduleUnavailable)
	default:
		response.InternalError(c)
	}
}
