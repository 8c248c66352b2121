package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWithDefaults(t *testing.T) {
	logger, err := New(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("startup")
}

func TestNewConsoleFormat(t *testing.T) {
	logger, err := New(&Config{Level: "debug", Format: "console"}, nil)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Format: "json"}, nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		level, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, level)
	}

	_, err := ParseLevel("shouting")
	assert.Error(t, err)
}
