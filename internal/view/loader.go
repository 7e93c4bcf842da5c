package view

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// State 加载状态
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// Notifier 用户可见的错误提示（toast / stderr 等）
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc 函数适配 Notifier
type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// FetchFunc 一次取数
type FetchFunc[T any] func(ctx context.Context) (T, error)

// ErrorTitle 失败提示标题
const ErrorTitle = "Error"

// Loader 单个视图实例的取数状态机
//
//   - 每次 Load 分配递增的代号，并取消上一次未完成取数的 ctx
//   - 只有最新代号的结果可以提交，较早的结果一律丢弃
//   - 失败时记录日志、提示一次、退出 loading，保留上一次成功的数据
type Loader[T any] struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	state   State
	// settled 最近一次提交后的状态
	settled State
	data    T
	err     error

	notifier    Notifier
	failMessage string
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// NewLoader 创建 Loader；failMessage 为失败时提示给用户的文本
func NewLoader[T any](notifier Notifier, failMessage string, logger *zap.Logger) *Loader[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader[T]{
		state:       StateIdle,
		settled:     StateIdle,
		notifier:    notifier,
		failMessage: failMessage,
		logger:      logger,
	}
}

// Load 异步取数，返回的 channel 在本次取数结束（提交或丢弃）后关闭
func (l *Loader[T]) Load(ctx context.Context, fetch FetchFunc[T]) <-chan struct{} {
	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.state = StateLoading
	l.mu.Unlock()

	done := make(chan struct{})
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(done)
		defer cancel()

		data, err := fetch(ctx)
		l.commit(gen, data, err)
	}()
	return done
}

func (l *Loader[T]) commit(gen uint64, data T, err error) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.logger.Debug("丢弃过期的取数结果", zap.Uint64("generation", gen))
		return
	}
	l.cancel = nil
	if err != nil {
		l.state = StateError
		l.settled = StateError
		l.err = err
		l.mu.Unlock()

		l.logger.Error("视图取数失败", zap.Uint64("generation", gen), zap.Error(err))
		if l.notifier != nil {
			l.notifier.Notify(ErrorTitle, l.failMessage)
		}
		return
	}
	l.state = StateLoaded
	l.settled = StateLoaded
	l.data = data
	l.err = nil
	l.mu.Unlock()
}

// Snapshot 当前数据与状态
func (l *Loader[T]) Snapshot() (T, State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.data, l.state, l.err
}

// Loading 是否有取数在进行
func (l *Loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateLoading
}

// Wait 等待所有已发起的取数结束
func (l *Loader[T]) Wait() {
	l.wg.Wait()
}

// Close 取消进行中的取数并等待其退出
func (l *Loader[T]) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	// 使进行中的结果失效
	l.gen++
	l.state = l.settled
	l.mu.Unlock()
	l.wg.Wait()
}
