package logger

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{input: "", expected: zapcore.InfoLevel},
		{input: "debug", expected: zapcore.DebugLevel},
		{input: "INFO", expected: zapcore.InfoLevel},
		{input: "warning", expected: zapcore.WarnLevel},
		{input: "error", expected: zapcore.ErrorLevel},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			lvl, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lvl)
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{FormatAuto, FormatJSON, FormatConsole, ""} {
		l, err := New("debug", format)
		require.NoError(t, err, format)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}

	_, err := New("info", "xml")
	assert.ErrorContains(t, err, "unsupported log format")

	_, err = New("loud", FormatJSON)
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewContext(t *testing.T) {
	t.Parallel()

	ctx := NewContext(context.Background())
	_, err := logr.FromContext(ctx)
	assert.NoError(t, err)
}
