package view

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/internal/service"
	"schedule-board/backend/pkg/clock"
)

// ScheduleFailMessage 日程取数失败时的提示
const ScheduleFailMessage = "Failed to load schedule"

// ScheduleProps 日程视图属性
type ScheduleProps struct {
	UserID      string
	Title       string
	Date        string // YYYY-MM-DD，空表示不按日期过滤
	ShowFilters bool
}

// scheduleData 一次取数的结果，连同取数时的 UserID / Date
type scheduleData struct {
	fetched  bool
	userID   string
	date     string
	bookings []model.Booking
	slots    []model.BookedSlot
}

// ScheduleView 有状态的日程视图
//
// 只有 UserID / Date 变化会重新取数；过滤条件切换只在已有数据上重新聚合。
type ScheduleView struct {
	src    provider.Provider
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
	loader *Loader[scheduleData]

	mu     sync.Mutex
	props  ScheduleProps
	filter aggregate.Filter
}

// ScheduleSnapshot 某一时刻的视图内容
type ScheduleSnapshot struct {
	Props   ScheduleProps
	Filter  aggregate.Filter
	Result  aggregate.ScheduleResult
	State   State
	Loading bool
}

// NewScheduleView 创建日程视图，需调用 Mount 开始首次取数
func NewScheduleView(src provider.Provider, clk clock.Clock, loc *time.Location, notifier Notifier, logger *zap.Logger, props ScheduleProps) (*ScheduleView, error) {
	if err := aggregate.ValidateDate(props.Date); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleView{
		src:    src,
		clock:  clk,
		loc:    loc,
		logger: logger,
		loader: NewLoader[scheduleData](notifier, ScheduleFailMessage, logger.Named("schedule_view")),
		props:  props,
		filter: aggregate.FilterAll,
	}, nil
}

// Mount 首次取数
func (v *ScheduleView) Mount(ctx context.Context) <-chan struct{} {
	v.mu.Lock()
	p := v.props
	v.mu.Unlock()
	return v.load(ctx, p)
}

// SetProps 更新属性；UserID 或 Date 变化时重新取数并返回对应的 done channel，否则返回 nil
func (v *ScheduleView) SetProps(ctx context.Context, p ScheduleProps) (<-chan struct{}, error) {
	if err := aggregate.ValidateDate(p.Date); err != nil {
		return nil, err
	}

	v.mu.Lock()
	prev := v.props
	v.props = p
	v.mu.Unlock()

	if prev.UserID == p.UserID && prev.Date == p.Date {
		return nil, nil
	}
	return v.load(ctx, p), nil
}

// SetFilter 切换 all / upcoming / past，不触发取数
func (v *ScheduleView) SetFilter(f aggregate.Filter) error {
	f, err := aggregate.ParseFilter(string(f))
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	return nil
}

// Refresh 按当前属性重新取数
func (v *ScheduleView) Refresh(ctx context.Context) <-chan struct{} {
	return v.Mount(ctx)
}

func (v *ScheduleView) load(ctx context.Context, p ScheduleProps) <-chan struct{} {
	return v.loader.Load(ctx, func(ctx context.Context) (scheduleData, error) {
		bookings, err := v.src.GetBookings(ctx)
		if err != nil {
			return scheduleData{}, err
		}
		data := scheduleData{fetched: true, userID: p.UserID, date: p.Date, bookings: bookings}
		if p.Date != "" {
			data.slots, err = v.src.GetAllBookedTimeSlots(ctx, p.Date)
			if err != nil {
				return scheduleData{}, err
			}
		}
		return data, nil
	})
}

// Snapshot 由最近提交的数据派生视图内容
//
// 用户与日期取自数据本身：新属性的取数未完成或失败时，仍按旧数据的条件展示。
func (v *ScheduleView) Snapshot() ScheduleSnapshot {
	v.mu.Lock()
	p, f := v.props, v.filter
	v.mu.Unlock()

	data, state, _ := v.loader.Snapshot()
	snap := ScheduleSnapshot{
		Props:   p,
		Filter:  f,
		State:   state,
		Loading: state == StateLoading,
	}

	params := aggregate.ScheduleParams{UserID: p.UserID, Date: p.Date, Filter: f}
	if data.fetched {
		params.UserID, params.Date = data.userID, data.date
	}
	res, err := aggregate.AggregateSchedule(data.bookings, data.slots, params, v.clock.Now(), v.loc)
	if err != nil {
		v.logger.Warn("日程聚合失败", zap.Error(err))
	}
	snap.Result = res
	return snap
}

// Render 转换为渲染用的日程视图
func (v *ScheduleView) Render() (*dto.ScheduleViewResponse, bool) {
	snap := v.Snapshot()
	title := snap.Props.Title
	if title == "" {
		title = service.DefaultScheduleTitle
	}
	resp := service.BuildScheduleView(snap.Result, title, snap.Props.ShowFilters, v.loc)
	resp.Filter = string(snap.Filter)
	return resp, snap.Loading
}

// Wait 等待进行中的取数结束
func (v *ScheduleView) Wait() { v.loader.Wait() }

// Close 取消进行中的取数
func (v *ScheduleView) Close() { v.loader.Close() }
