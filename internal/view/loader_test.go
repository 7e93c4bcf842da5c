package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, title+": "+message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func value(s string) FetchFunc[string] {
	return func(context.Context) (string, error) { return s, nil }
}

func TestLoader_LatestWins(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoader[string](nil, "failed", nil)
	release := make(chan struct{})
	firstCtx := make(chan context.Context, 1)

	first := l.Load(context.Background(), func(ctx context.Context) (string, error) {
		firstCtx <- ctx
		<-release
		return "first", nil
	})
	ctx := <-firstCtx

	second := l.Load(context.Background(), value("second"))
	<-second
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	// 较早的请求晚到，不得覆盖
	close(release)
	<-first

	data, state, err := l.Snapshot()
	assert.Equal(t, "second", data)
	assert.Equal(t, StateLoaded, state)
	assert.NoError(t, err)
}

func TestLoader_FailureKeepsPreviousData(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := &recordingNotifier{}
	l := NewLoader[string](n, "Failed to load schedule", nil)

	<-l.Load(context.Background(), value("ok"))
	<-l.Load(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("boom")
	})

	data, state, err := l.Snapshot()
	assert.Equal(t, "ok", data)
	assert.Equal(t, StateError, state)
	assert.EqualError(t, err, "boom")
	assert.False(t, l.Loading())
	assert.Equal(t, []string{"Error: Failed to load schedule"}, n.all())
}

func TestLoader_FirstLoadFailureIsEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := &recordingNotifier{}
	l := NewLoader[[]string](n, "failed", nil)
	<-l.Load(context.Background(), func(context.Context) ([]string, error) {
		return nil, errors.New("boom")
	})

	data, state, _ := l.Snapshot()
	assert.Empty(t, data)
	assert.Equal(t, StateError, state)
	assert.Len(t, n.all(), 1)
}

func TestLoader_SupersededFailureIsSilent(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := &recordingNotifier{}
	l := NewLoader[string](n, "failed", nil)
	started := make(chan struct{})

	first := l.Load(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	<-started
	<-l.Load(context.Background(), value("fresh"))
	<-first

	data, state, _ := l.Snapshot()
	assert.Equal(t, "fresh", data)
	assert.Equal(t, StateLoaded, state)
	assert.Empty(t, n.all())
}

func TestLoader_CloseCancelsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := &recordingNotifier{}
	l := NewLoader[string](n, "failed", nil)
	started := make(chan struct{})

	l.Load(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	})
	<-started
	require.True(t, l.Loading())

	l.Close()

	_, state, _ := l.Snapshot()
	assert.Equal(t, StateIdle, state)
	assert.Empty(t, n.all())
}
