package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db        *gorm.DB
	Booking   BookingRepository
	Timetable TimetableRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:        db,
		Booking:   NewBookingRepo(db),
		Timetable: NewTimetableRepo(db),
	}
}

// Ping 数据库健康检查
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
