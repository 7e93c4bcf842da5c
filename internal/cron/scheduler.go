package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"schedule-board/backend/internal/metrics"
)

// DefaultWarmSpec 每天零点
const DefaultWarmSpec = "@daily"

const warmTimeout = 30 * time.Second

// Warmer 可被预热的缓存
type Warmer interface {
	Warm(ctx context.Context) error
}

// Scheduler 定时预热课表缓存
type Scheduler struct {
	c      *cron.Cron
	warmer Warmer
	logger *zap.Logger
}

// NewScheduler 创建定时任务；loc 决定 @daily 的零点
func NewScheduler(warmer Warmer, spec string, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultWarmSpec
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		c:      cron.New(cron.WithLocation(loc)),
		warmer: warmer,
		logger: logger,
	}
	if _, err := s.c.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("无效的 cron 表达式 %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce 执行一次预热
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	start := time.Now()
	err := s.warmer.Warm(ctx)
	metrics.IncCacheWarm(err)
	if err != nil {
		s.logger.Error("课表缓存预热失败", zap.Error(err))
		return
	}
	s.logger.Info("课表缓存预热完成", zap.Duration("elapsed", time.Since(start)))
}

// Start 立即预热一次，然后按计划执行
func (s *Scheduler) Start() {
	s.RunOnce()
	s.c.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// Entries 已注册任务数
func (s *Scheduler) Entries() int {
	return len(s.c.Entries())
}
