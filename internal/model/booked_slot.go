package model

import "time"

// SlotType 已占用时段来源
type SlotType string

const (
	SlotTypeBooking   SlotType = "booking"
	SlotTypeTimetable SlotType = "timetable"
)

// BookedSlot 某一天被占用的时段（非数据表）
//
// 预约直接映射；课表条目按日期的星期落到具体日期上，
// StartTime / EndTime 为绝对时刻。
type BookedSlot struct {
	ID           string    `json:"id"`
	Type         SlotType  `json:"type"`
	ResourceID   string    `json:"resource_id,omitempty"`
	ResourceName string    `json:"resource_name,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`

	// 预约字段
	UserName string        `json:"user_name,omitempty"`
	Purpose  string        `json:"purpose,omitempty"`
	Status   BookingStatus `json:"status,omitempty"`

	// 课表字段
	SubjectCode string `json:"subject_code,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	FacultyName string `json:"faculty_name,omitempty"`
	Venue       string `json:"venue,omitempty"`
}
