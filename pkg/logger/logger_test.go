package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"schedule-board/backend/config"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger(&config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger(&config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNewGormLogger(t *testing.T) {
	l, err := NewLogger(&config.LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, NewGormLogger(l))
}
