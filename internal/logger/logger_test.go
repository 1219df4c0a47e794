// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		wantLevel zapcore.Level
		errMsg    string
	}{
		{name: "prod defaults to info", env: "prod", wantLevel: zapcore.InfoLevel},
		{name: "empty env is prod", env: "", wantLevel: zapcore.InfoLevel},
		{name: "dev defaults to debug", env: "dev", wantLevel: zapcore.DebugLevel},
		{name: "level override", env: "prod", level: "warn", wantLevel: zapcore.WarnLevel},
		{name: "unknown env", env: "staging", errMsg: "unknown log environment"},
		{name: "bad level", env: "local", level: "loud", errMsg: "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.env, tt.level)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	stored := zap.NewExample()
	fallback := zap.NewNop()

	ctx := ContextWithLogger(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx, fallback))
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.NotNil(t, FromContext(context.Background(), nil))
}
