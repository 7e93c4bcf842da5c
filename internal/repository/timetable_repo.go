package repository

import (
	"context"

	"gorm.io/gorm"

	"schedule-board/backend/internal/model"
)

// TimetableRepository 周课表数据访问接口（只读）
type TimetableRepository interface {
	List(ctx context.Context) ([]model.TimetableEntry, error)
	ListByDay(ctx context.Context, day model.Weekday) ([]model.TimetableEntry, error)
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) List(ctx context.Context) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := r.db.WithContext(ctx).
		Order("time_start ASC, subject_code ASC").
		Find(&entries).Error
	return entries, err
}

func (r *timetableRepo) ListByDay(ctx context.Context, day model.Weekday) ([]model.TimetableEntry, error) {
	var entries []model.TimetableEntry
	err := r.db.WithContext(ctx).
		Where("UPPER(TRIM(day)) = ?", string(day)).
		Order("time_start ASC, subject_code ASC").
		Find(&entries).Error
	return entries, err
}
