package model

import "time"

// BookingStatus 预约状态
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Valid 是否为已知状态
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusPending, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// Booking 资源预约表 — 对应 bookings
//
// ResourceName / UserName 由查询时 JOIN 得到，不参与写入与迁移。
type Booking struct {
	BookingID    string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string        `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ResourceID   string        `gorm:"type:uuid;not null"                             json:"resource_id"`
	Purpose      string        `gorm:"type:varchar(255)"                              json:"purpose"`
	Status       BookingStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	StartTime    time.Time     `gorm:"not null;index"                                 json:"start_time"`
	EndTime      time.Time     `gorm:"not null"                                       json:"end_time"`
	ResourceName string        `gorm:"->;-:migration"                                 json:"resource_name"`
	UserName     string        `gorm:"->;-:migration"                                 json:"user_name"`
	SoftDeleteModel
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }
