package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/service"
	"schedule-board/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedule 导出日程为 Excel
// GET /api/v1/export/schedule?user_id=&date=&filter=&title=
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	var q dto.ScheduleViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportSchedule(c.Request.Context(), &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportTimetableICS 导出周课表为 iCalendar
// GET /api/v1/export/timetable.ics
func (h *ExportHandler) ExportTimetableICS(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportTimetableICS(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	attachment(c, filename)
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}

// attachment 设置下载响应头
func attachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleQueryError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrScheduleFetchFailed):
		response.BadGateway(c, response.CodeScheduleUnavailable, MsgScheduleUnavailable)
	case errors.Is(err, service.ErrTimetableFetchFailed):
		response.BadGateway(c, response.CodeTimetableUnavailable, MsgTimetableUnavailable)
	default:
		response.InternalError(c)
	}
}
