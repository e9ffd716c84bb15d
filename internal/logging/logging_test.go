// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/minmax/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   types.LogConfig
		level zapcore.Level
	}{
		{"defaults", types.LogConfig{}, zapcore.InfoLevel},
		{"debug console", types.LogConfig{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"warn json", types.LogConfig{Level: "WARN", Format: "json"}, zapcore.WarnLevel},
		{"error", types.LogConfig{Level: "error"}, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.level))
			assert.False(t, log.Core().Enabled(tt.level-1))
		})
	}
}

func TestNewErrors(t *testing.T) {
	_, err := New(types.LogConfig{Level: "loud"})
	assert.ErrorContains(t, err, "log level")

	_, err = New(types.LogConfig{Format: "xml"})
	assert.ErrorContains(t, err, "log format")
}
