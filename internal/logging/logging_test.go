package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_levels(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		logger, err := New(env, "WARN")
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	}
}

func TestNew_debug(t *testing.T) {
	logger, err := New("dev", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_invalidLevel(t *testing.T) {
	_, err := New("prod", "verbose")
	assert.Error(t, err)
}
