package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/metrics"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
)

// ── 课表视图业务错误 ──

var ErrTimetableFetchFailed = errors.New("课表数据加载失败")

const (
	DefaultTimetableTitle = "Timetable"
	EmptyTimetableMessage = "No timetable entries found"
)

// TimetableViewService 课表视图业务接口
type TimetableViewService interface {
	// GetTimetable 获取按星期分组的课表卡片；today_only 时只取今天
	GetTimetable(ctx context.Context, q *dto.TimetableViewQuery) (*dto.TimetableViewResponse, error)
}

type timetableViewService struct {
	src    provider.Provider
	logger *zap.Logger
}

// NewTimetableViewService 创建 TimetableViewService 实例
func NewTimetableViewService(src provider.Provider, logger *zap.Logger) TimetableViewService {
	return &timetableViewService{src: src, logger: logger}
}

func (s *timetableViewService) GetTimetable(ctx context.Context, q *dto.TimetableViewQuery) (*dto.TimetableViewResponse, error) {
	var (
		entries []model.TimetableEntry
		err     error
	)
	if q.TodayOnly {
		entries, err = s.src.GetTodayTimetable(ctx)
	} else {
		entries, err = s.src.GetTimetable(ctx)
	}
	if err != nil {
		metrics.IncViewFailure("timetable")
		s.logger.Error("获取课表数据失败", zap.Bool("today_only", q.TodayOnly), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTimetableFetchFailed, err)
	}

	result := aggregate.AggregateTimetable(entries)
	if len(result.Unrecognized) > 0 {
		s.logger.Warn("课表包含未知星期代码", zap.Strings("days", result.Unrecognized))
	}

	title := q.Title
	if title == "" {
		title = DefaultTimetableTitle
	}
	return BuildTimetableView(result, title, q.TodayOnly), nil
}

// BuildTimetableView 聚合结果 → 课表视图
func BuildTimetableView(res aggregate.TimetableResult, title string, todayOnly bool) *dto.TimetableViewResponse {
	resp := &dto.TimetableViewResponse{
		Title:        title,
		TodayOnly:    todayOnly,
		Empty:        res.Empty(),
		Groups:       make([]dto.TimetableGroup, 0, len(res.Groups)),
		Unrecognized: res.Unrecognized,
	}
	if res.Empty() {
		resp.EmptyMessage = EmptyTimetableMessage
	}

	for _, g := range res.Groups {
		group := dto.TimetableGroup{
			Day:        string(g.Day),
			Heading:    aggregate.DayName(g.Day),
			Recognized: g.Recognized,
			Entries:    make([]dto.TimetableCard, 0, len(g.Entries)),
		}
		for _, e := range g.Entries {
			group.Entries = append(group.Entries, dto.TimetableCard{
				ID:          e.EntryID,
				SubjectCode: e.SubjectCode,
				SubjectName: e.SubjectName,
				TimeRange:   aggregate.WallClockLabel(e.TimeStart) + " - " + aggregate.WallClockLabel(e.TimeEnd),
				Faculty:     aggregate.FacultyLabel(e.FacultyName),
				Venue:       e.Venue,
			})
		}
		resp.Total += len(group.Entries)
		resp.Groups = append(resp.Groups, group)
	}
	return resp
}
