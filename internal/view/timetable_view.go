package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/dto"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/internal/provider"
	"schedule-board/backend/internal/service"
)

// TimetableFailMessage 课表取数失败时的提示
const TimetableFailMessage = "Failed to load timetable"

// TimetableProps 课表视图属性
type TimetableProps struct {
	Title     string
	TodayOnly bool
}

// timetableData 一次取数的结果，连同取数时的 TodayOnly
type timetableData struct {
	fetched   bool
	todayOnly bool
	entries   []model.TimetableEntry
}

// TimetableView 有状态的课表视图，TodayOnly 变化时重新取数
type TimetableView struct {
	src    provider.Provider
	logger *zap.Logger
	loader *Loader[timetableData]

	mu    sync.Mutex
	props TimetableProps
}

// TimetableSnapshot 某一时刻的视图内容
type TimetableSnapshot struct {
	Props TimetableProps
	// TodayOnly 当前展示数据的范围，可能落后于 Props.TodayOnly
	TodayOnly bool
	Result    aggregate.TimetableResult
	State     State
	Loading   bool
}

// NewTimetableView 创建课表视图，需调用 Mount 开始首次取数
func NewTimetableView(src provider.Provider, notifier Notifier, logger *zap.Logger, props TimetableProps) *TimetableView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableView{
		src:    src,
		logger: logger,
		loader: NewLoader[timetableData](notifier, TimetableFailMessage, logger.Named("timetable_view")),
		props:  props,
	}
}

// Mount 首次取数
func (v *TimetableView) Mount(ctx context.Context) <-chan struct{} {
	v.mu.Lock()
	today := v.props.TodayOnly
	v.mu.Unlock()
	return v.load(ctx, today)
}

// SetProps 更新属性；TodayOnly 变化时重新取数，否则返回 nil
func (v *TimetableView) SetProps(ctx context.Context, p TimetableProps) <-chan struct{} {
	v.mu.Lock()
	prev := v.props
	v.props = p
	v.mu.Unlock()

	if prev.TodayOnly == p.TodayOnly {
		return nil
	}
	return v.load(ctx, p.TodayOnly)
}

func (v *TimetableView) load(ctx context.Context, todayOnly bool) <-chan struct{} {
	return v.loader.Load(ctx, func(ctx context.Context) (timetableData, error) {
		fetch := v.src.GetTimetable
		if todayOnly {
			fetch = v.src.GetTodayTimetable
		}
		entries, err := fetch(ctx)
		if err != nil {
			return timetableData{}, err
		}
		return timetableData{fetched: true, todayOnly: todayOnly, entries: entries}, nil
	})
}

// Snapshot 由最近提交的数据派生视图内容
func (v *TimetableView) Snapshot() TimetableSnapshot {
	v.mu.Lock()
	p := v.props
	v.mu.Unlock()

	data, state, _ := v.loader.Snapshot()
	res := aggregate.AggregateTimetable(data.entries)
	if len(res.Unrecognized) > 0 {
		v.logger.Warn("课表包含未知星期代码", zap.Strings("days", res.Unrecognized))
	}
	todayOnly := p.TodayOnly
	if data.fetched {
		todayOnly = data.todayOnly
	}
	return TimetableSnapshot{
		Props:     p,
		TodayOnly: todayOnly,
		Result:    res,
		State:     state,
		Loading:   state == StateLoading,
	}
}

// Render 转换为渲染用的课表视图
func (v *TimetableView) Render() (*dto.TimetableViewResponse, bool) {
	snap := v.Snapshot()
	title := snap.Props.Title
	if title == "" {
		title = service.DefaultTimetableTitle
	}
	return service.BuildTimetableView(snap.Result, title, snap.TodayOnly), snap.Loading
}

// Wait 等待进行中的取数结束
func (v *TimetableView) Wait() { v.loader.Wait() }

// Close 取消进行中的取数
func (v *TimetableView) Close() { v.loader.Close() }
