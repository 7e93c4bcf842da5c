package clock

import (
	"sync"
	"time"
)

// Clock 当前时间来源，便于测试注入
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// NewRealClock 系统时钟
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

// MockClock 固定时间，测试用
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
}

// NewMockClock 创建固定于 t 的时钟
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// Set 设置当前时间
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Add 推进时间
func (c *MockClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)
}
