package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/pkg/response"
)

// 用户可见的取数失败提示
const (
	MsgScheduleUnavailable  = "Failed to load schedule"
	MsgTimetableUnavailable = "Failed to load timetable"
	MsgRecordsUnavailable   = "Failed to load records"
)

// handleQueryError 参数类错误 → 400，返回是否已处理
func handleQueryError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, aggregate.ErrInvalidDate):
		response.BadRequest(c, response.CodeInvalidDate, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, aggregate.ErrInvalidFilter):
		response.BadRequest(c, response.CodeInvalidFilter, "过滤条件无效，可选 all / upcoming / past")
	default:
		return false
	}
	return true
}
