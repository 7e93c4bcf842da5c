package dto

import "time"

// ── 日程视图 ──

// ScheduleViewQuery 日程视图查询参数
// date / filter 的格式由服务层校验，便于返回具体错误码
type ScheduleViewQuery struct {
	UserID      string `form:"user_id" binding:"omitempty,max=64"`
	Date        string `form:"date" binding:"omitempty,max=10"`
	Filter      string `form:"filter" binding:"omitempty,max=16"`
	Title       string `form:"title" binding:"omitempty,max=100"`
	ShowFilters *bool  `form:"show_filters"`
}

// ScheduleViewResponse 日程视图
type ScheduleViewResponse struct {
	Title           string          `json:"title"`
	UserID          string          `json:"user_id,omitempty"`
	Date            string          `json:"date,omitempty"`
	Filter          string          `json:"filter"`
	ShowFilters     bool            `json:"show_filters"`
	ShowDateHeaders bool            `json:"show_date_headers"`
	Total           int             `json:"total"`
	Empty           bool            `json:"empty"`
	EmptyMessage    string          `json:"empty_message,omitempty"`
	Groups          []ScheduleGroup `json:"groups"`
}

// ScheduleGroup 同一日期的卡片
type ScheduleGroup struct {
	Date    string         `json:"date"`    // YYYY-MM-DD
	Heading string         `json:"heading"` // Wed, May 1, 2024
	Items   []ScheduleCard `json:"items"`
}

// ScheduleCard 日程卡片（预约或课表时段）
type ScheduleCard struct {
	Key       string    `json:"key"`
	Type      string    `json:"type"` // booking | timetable
	ID        string    `json:"id"`
	Title     string    `json:"title"` // 资源名或课程代码
	Badge     string    `json:"badge"` // 状态或课程名
	BadgeTone string    `json:"badge_tone"`
	TimeRange string    `json:"time_range"` // 09:00 - 10:00
	Subtitle  string    `json:"subtitle"`
	Location  string    `json:"location"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
