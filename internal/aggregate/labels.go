package aggregate

import (
	"strings"
	"time"

	"schedule-board/backend/internal/model"
)

const (
	headingLayout = "Mon, Jan 2, 2006"
	clockLayout   = "15:04"

	noPurposeLabel = "No purpose specified"
	noFacultyLabel = "No faculty assigned"
)

var dayNames = map[model.Weekday]string{
	model.Monday:    "Monday",
	model.Tuesday:   "Tuesday",
	model.Wednesday: "Wednesday",
	model.Thursday:  "Thursday",
	model.Friday:    "Friday",
	model.Saturday:  "Saturday",
	model.Sunday:    "Sunday",
}

// StatusLabel 首字母大写的状态文本
func StatusLabel(s model.BookingStatus) string {
	if s == "" {
		return ""
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

// DayName 星期全称；未知代码原样返回
func DayName(d model.Weekday) string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return string(d)
}

// DateHeading YYYY-MM-DD → "Wed, May 1, 2024"；无法解析时原样返回
func DateHeading(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(headingLayout)
}

// ClockLabel 时刻在 loc 下的 HH:MM
func ClockLabel(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(clockLayout)
}

// WallClockLabel 截取 HH:MM[:SS] 的 HH:MM
func WallClockLabel(s string) string {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return s
	}
	return parts[0] + ":" + parts[1]
}

// BookingSubtitle 按用户过滤时显示用途，否则显示预约人
func BookingSubtitle(b *model.Booking, userFiltered bool) string {
	if userFiltered {
		purpose := b.Purpose
		if purpose == "" {
			purpose = noPurposeLabel
		}
		return "Booked for: " + purpose
	}
	return "Booked by: " + b.UserName
}

// FacultyLabel 教师名，空时给出占位文本
func FacultyLabel(name string) string {
	if name == "" {
		return noFacultyLabel
	}
	return name
}

// LocationLabel 资源名优先，其次场地
func LocationLabel(resourceName, venue string) string {
	if resourceName != "" {
		return resourceName
	}
	return venue
}

var statusTones = map[model.BookingStatus]string{
	model.BookingStatusConfirmed: "default",
	model.BookingStatusPending:   "outline",
	model.BookingStatusCancelled: "destructive",
	model.BookingStatusCompleted: "secondary",
}

// StatusTone 状态徽标样式，未知状态为 default
func StatusTone(s model.BookingStatus) string {
	if tone, ok := statusTones[s]; ok {
		return tone
	}
	return "default"
}
