package provider

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"schedule-board/backend/internal/aggregate"
	"schedule-board/backend/internal/metrics"
	"schedule-board/backend/internal/model"
	"schedule-board/backend/pkg/clock"
	"schedule-board/backend/pkg/redis"
)

// Cache JSON 缓存（由 pkg/redis.Client 实现）
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

const cachePrefix = "schedule:"

// CachedProvider 带 TTL 的缓存装饰器
// cache 为 nil 时直接透传；缓存读写失败只记录日志，不影响结果
type CachedProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	clock  clock.Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewCachedProvider 创建缓存数据源
func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, clk clock.Clock, loc *time.Location, logger *zap.Logger) *CachedProvider {
	if loc == nil {
		loc = time.Local
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl, clock: clk, loc: loc, logger: logger}
}

func (p *CachedProvider) GetBookings(ctx context.Context) ([]model.Booking, error) {
	return readThrough(ctx, p, cachePrefix+"bookings", p.next.GetBookings)
}

func (p *CachedProvider) GetAllBookedTimeSlots(ctx context.Context, date string) ([]model.BookedSlot, error) {
	if date == "" || aggregate.ValidateDate(date) != nil {
		// 非法日期交给下游返回对应错误，不写缓存
		return p.next.GetAllBookedTimeSlots(ctx, date)
	}
	return readThrough(ctx, p, cachePrefix+"slots:"+date, func(ctx context.Context) ([]model.BookedSlot, error) {
		return p.next.GetAllBookedTimeSlots(ctx, date)
	})
}

func (p *CachedProvider) GetTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	return readThrough(ctx, p, cachePrefix+"timetable:week", p.next.GetTimetable)
}

// GetTodayTimetable 缓存键带日期，跨天自然失效
func (p *CachedProvider) GetTodayTimetable(ctx context.Context) ([]model.TimetableEntry, error) {
	key := cachePrefix + "timetable:today:" + aggregate.CalendarDate(p.clock.Now(), p.loc)
	return readThrough(ctx, p, key, p.next.GetTodayTimetable)
}

// Invalidate 清除全部缓存条目
func (p *CachedProvider) Invalidate(ctx context.Context) (int64, error) {
	if p.cache == nil {
		return 0, nil
	}
	return p.cache.DeleteByPrefix(ctx, cachePrefix)
}

// Warm 清除缓存并预加载周课表与今日课表
func (p *CachedProvider) Warm(ctx context.Context) error {
	if _, err := p.Invalidate(ctx); err != nil {
		p.logger.Warn("清除缓存失败", zap.Error(err))
	}
	if _, err := p.GetTimetable(ctx); err != nil {
		return err
	}
	_, err := p.GetTodayTimetable(ctx)
	return err
}

// readThrough 先读缓存，未命中时回源并回写
func readThrough[T any](ctx context.Context, p *CachedProvider, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if p.cache == nil {
		return load(ctx)
	}

	var cached []T
	err := p.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.IncCacheHit()
		return cached, nil
	case errors.Is(err, redis.ErrCacheMiss):
		metrics.IncCacheMiss()
	default:
		metrics.IncCacheError()
		p.logger.Warn("读取缓存失败，回源查询", zap.String("key", key), zap.Error(err))
	}

	fresh, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.cache.SetJSON(ctx, key, fresh, p.ttl); err != nil {
		metrics.IncCacheError()
		p.logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
	}
	return fresh, nil
}
