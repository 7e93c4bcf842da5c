package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/metrics"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/pkg/clock"
)

// ── 日程视图业务错误 ──

var ErrScheduleFetchFailed = errors.New("日程数据加载失败")

const (
	DefaultScheduleTitle = "Schedule"
	EmptyScheduleMessage = "No schedule items found"
)

// ── ScheduleViewService 接口 ───────────────────────────────
//
// 设计说明：
//   - 每次请求独立取数 + 纯函数聚合，无共享状态
//   - 指定日期时额外获取当天的占用时段，只合并其中的课表时段
//   - 日期 / 过滤条件在取数前校验，非法参数不会触发数据源调用
// ─────────────────────────────────────────────────────────────

// ScheduleViewService 日程视图业务接口
type ScheduleViewService interface {
	// GetSchedule 获取按日期分组的日程卡片
	GetSchedule(ctx context.Context, q *dto.ScheduleViewQuery) (*dto.ScheduleViewResponse, error)
	// Aggregate 获取聚合结果（导出等内部场景使用）
	Aggregate(ctx context.Context, p aggregate.ScheduleParams) (aggregate.ScheduleResult, error)
}

type scheduleViewService struct {
	src    provider.Provider
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewScheduleViewService 创建 ScheduleViewService 实例
func NewScheduleViewService(src provider.Provider, clk clock.Clock, loc *time.Location, logger *zap.Logger) ScheduleViewService {
	if loc == nil {
		loc = time.Local
	}
	return &scheduleViewService{src: src, clock: clk, loc: loc, logger: logger}
}

// ════════════════════════════════════════════════════════════
// GetSchedule — 日程视图
// ════════════════════════════════════════════════════════════

func (s *scheduleViewService) GetSchedule(ctx context.Context, q *dto.ScheduleViewQuery) (*dto.ScheduleViewResponse, error) {
	params := aggregate.ScheduleParams{
		UserID: q.UserID,
		Date:   q.Date,
		Filter: aggregate.Filter(q.Filter),
	}

	result, err := s.Aggregate(ctx, params)
	if err != nil {
		return nil, err
	}

	title := q.Title
	if title == "" {
		title = DefaultScheduleTitle
	}
	showFilters := true
	if q.ShowFilters != nil {
		showFilters = *q.ShowFilters
	}

	return BuildScheduleView(result, title, showFilters, s.loc), nil
}

// Aggregate 校验参数 → 取数 → 聚合
func (s *scheduleViewService) Aggregate(ctx context.Context, p aggregate.ScheduleParams) (aggregate.ScheduleResult, error) {
	if err := aggregate.ValidateDate(p.Date); err != nil {
		return aggregate.ScheduleResult{}, err
	}
	if _, err := aggregate.ParseFilter(string(p.Filter)); err != nil {
		return aggregate.ScheduleResult{}, err
	}

	bookings, slots, err := s.fetch(ctx, p.Date)
	if err != nil {
		metrics.IncViewFailure("schedule")
		s.logger.Error("获取日程数据失败",
			zap.String("user_id", p.UserID),
			zap.String("date", p.Date),
			zap.Error(err),
		)
		return aggregate.ScheduleResult{}, fmt.Errorf("%w: %w", ErrScheduleFetchFailed, err)
	}

	return aggregate.AggregateSchedule(bookings, slots, p, s.clock.Now(), s.loc)
}

func (s *scheduleViewService) fetch(ctx context.Context, date string) ([]model.Booking, []model.BookedSlot, error) {
	bookings, err := s.src.GetBookings(ctx)
	if err != nil {
		return nil, nil, err
	}
	if date == "" {
		return bookings, nil, nil
	}
	slots, err := s.src.GetAllBookedTimeSlots(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	return bookings, slots, nil
}

// ── DTO 转换 ──

// BuildScheduleView 聚合结果 → 日程视图
// 指定日期时不显示过滤按钮与日期标题
func BuildScheduleView(res aggregate.ScheduleResult, title string, showFilters bool, loc *time.Location) *dto.ScheduleViewResponse {
	p := res.Params
	resp := &dto.ScheduleViewResponse{
		Title:           title,
		UserID:          p.UserID,
		Date:            p.Date,
		Filter:          string(p.Filter),
		ShowFilters:     showFilters && !p.DateMode(),
		ShowDateHeaders: !p.DateMode(),
		Total:           res.Len(),
		Empty:           res.Empty(),
		Groups:          make([]dto.ScheduleGroup, 0, len(res.Groups)),
	}
	if resp.Filter == "" {
		resp.Filter = string(aggregate.FilterAll)
	}
	if res.Empty() {
		resp.EmptyMessage = EmptyScheduleMessage
	}

	userFiltered := p.UserID != ""
	for _, g := range res.Groups {
		group := dto.ScheduleGroup{
			Date:    g.Date,
			Heading: aggregate.DateHeading(g.Date),
			Items:   make([]dto.ScheduleCard, 0, len(g.Items)),
		}
		for _, it := range g.Items {
			group.Items = append(group.Items, scheduleCard(it, userFiltered, loc))
		}
		resp.Groups = append(resp.Groups, group)
	}
	return resp
}

func scheduleCard(it aggregate.Item, userFiltered bool, loc *time.Location) dto.ScheduleCard {
	card := dto.ScheduleCard{
		Key:       it.Key(),
		Type:      string(it.Type),
		ID:        it.ID,
		TimeRange: aggregate.ClockLabel(it.StartTime, loc) + " - " + aggregate.ClockLabel(it.EndTime, loc),
		StartTime: it.StartTime,
		EndTime:   it.EndTime,
	}

	switch {
	case it.Booking != nil:
		b := it.Booking
		card.Title = b.ResourceName
		card.Badge = aggregate.StatusLabel(b.Status)
		card.BadgeTone = aggregate.StatusTone(b.Status)
		card.Subtitle = aggregate.BookingSubtitle(b, userFiltered)
		card.Location = b.ResourceName
	case it.Slot != nil:
		sl := it.Slot
		card.Title = sl.SubjectCode
		card.Badge = sl.SubjectName
		card.BadgeTone = "default"
		card.Subtitle = aggregate.FacultyLabel(sl.FacultyName)
		card.Location = aggregate.LocationLabel(sl.ResourceName, sl.Venue)
	}
	return card
}
