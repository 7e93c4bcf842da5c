package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schedule-board/backend/internal/model"
)

// BookingRepository 预约数据访问接口（只读）
type BookingRepository interface {
	// List 全部预约，附带资源名与预约人姓名，按开始时间升序
	List(ctx context.Context) ([]model.Booking, error)
	// ListActiveBetween 开始时间落在 [from, to) 内且未取消的预约
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error)
}

type bookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo 创建 BookingRepository 实例
func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) withNames(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("bookings.*, resources.name AS resource_name, users.name AS user_name").
		Joins("LEFT JOIN resources ON resources.resource_id = bookings.resource_id").
		Joins("LEFT JOIN users ON users.user_id = bookings.user_id")
}

func (r *bookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.withNames(ctx).
		Order("bookings.start_time ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepo) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.withNames(ctx).
		Where("bookings.start_time >= ? AND bookings.start_time < ?", from, to).
		Where("bookings.status <> ?", model.BookingStatusCancelled).
		Order("bookings.start_time ASC").
		Find(&bookings).Error
	return bookings, err
}
