package dto

// ── 课表视图 ──

// TimetableViewQuery 课表视图查询参数
type TimetableViewQuery struct {
	TodayOnly bool   `form:"today_only"`
	Title     string `form:"title" binding:"omitempty,max=100"`
}

// TimetableViewResponse 课表视图
type TimetableViewResponse struct {
	Title        string           `json:"title"`
	TodayOnly    bool             `json:"today_only"`
	Total        int              `json:"total"`
	Empty        bool             `json:"empty"`
	EmptyMessage string           `json:"empty_message,omitempty"`
	Groups       []TimetableGroup `json:"groups"`
	Unrecognized []string         `json:"unrecognized_days,omitempty"`
}

// TimetableGroup 同一星期的卡片
type TimetableGroup struct {
	Day        string          `json:"day"`     // MON
	Heading    string          `json:"heading"` // Monday
	Recognized bool            `json:"recognized"`
	Entries    []TimetableCard `json:"entries"`
}

// TimetableCard 课表卡片
type TimetableCard struct {
	ID          string `json:"id"`
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
	TimeRange   string `json:"time_range"`
	Faculty     string `json:"faculty"`
	Venue       string `json:"venue"`
}
