package zap_test

import (
	"testing"

	mvzap "github.com/fwojciec/multiverse/zap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		level  string
		format string
		want   zapcore.Level
	}{
		{"defaults", "", "", zapcore.InfoLevel},
		{"debug console", "debug", "console", zapcore.DebugLevel},
		{"warn json", "warn", "json", zapcore.WarnLevel},
		{"upper case", "ERROR", "JSON", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			log, err := mvzap.New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()
	_, err := mvzap.New("loud", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()
	_, err := mvzap.New("info", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log format "xml"`)
}
