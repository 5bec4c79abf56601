package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferedLogger(level LogLevel, json bool) (Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewLogger(&Config{Level: level, Output: &buf, JSON: json, TimeFormat: "15:04:05"}), &buf
}

func TestFromContext(t *testing.T) {
	t.Run("Should return logger stored in context", func(t *testing.T) {
		expected := NewForTests()
		ctx := ContextWithLogger(t.Context(), expected)
		assert.Same(t, expected, FromContext(ctx))
	})
	t.Run("Should fall back to default logger", func(t *testing.T) {
		require.NotNil(t, FromContext(t.Context()))
		require.NotNil(t, FromContext(context.WithValue(t.Context(), LoggerCtxKey, "not a logger")))
		require.NotNil(t, FromContext(context.WithValue(t.Context(), LoggerCtxKey, (Logger)(nil))))
	})
}

func TestLogLevel_charmLevel(t *testing.T) {
	t.Run("Should map levels and default unknown to info", func(t *testing.T) {
		cases := map[LogLevel]int{
			DebugLevel:          -4,
			InfoLevel:           0,
			WarnLevel:           4,
			ErrorLevel:          8,
			DisabledLevel:       1000,
			LogLevel("verbose"): 0,
		}
		for level, expected := range cases {
			assert.Equal(t, expected, int(level.charmLevel()), "level %s", level)
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Run("Should accept known levels in any case", func(t *testing.T) {
		level, ok := ParseLevel(" WARN ")
		assert.True(t, ok)
		assert.Equal(t, WarnLevel, level)
	})
	t.Run("Should reject unknown levels", func(t *testing.T) {
		_, ok := ParseLevel("verbose")
		assert.False(t, ok)
	})
}

func TestLogger_Output(t *testing.T) {
	t.Run("Should filter below configured level", func(t *testing.T) {
		l, buf := bufferedLogger(WarnLevel, false)
		l.Info("connection opened")
		l.Warn("module skipped", "module", "blog")
		out := buf.String()
		assert.NotContains(t, out, "connection opened")
		assert.Contains(t, out, "module skipped")
		assert.Contains(t, out, "blog")
	})
	t.Run("Should carry fields added with With", func(t *testing.T) {
		l, buf := bufferedLogger(InfoLevel, true)
		l.With("connection", "Admin", "dialect", "sqlserver").Info("context registered")
		out := buf.String()
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))
		assert.Contains(t, out, `"connection":"Admin"`)
		assert.Contains(t, out, "context registered")
	})
	t.Run("Should stay silent when disabled", func(t *testing.T) {
		l, buf := bufferedLogger(DisabledLevel, false)
		l.Error("nothing")
		assert.Empty(t, buf.String())
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should use the default config without one", func(t *testing.T) {
		l, ok := NewLogger(nil).(*loggerImpl)
		require.True(t, ok)
		assert.Equal(t, InfoLevel.charmLevel(), l.charmLogger.GetLevel())
	})
	t.Run("Should discard everything in tests", func(t *testing.T) {
		l, ok := NewForTests().(*loggerImpl)
		require.True(t, ok)
		assert.Equal(t, DisabledLevel.charmLevel(), l.charmLogger.GetLevel())
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("Should replace the default logger", func(t *testing.T) {
		before := GetDefault()
		l := SetupLogger("debug", true, false)
		t.Cleanup(InitForTests)
		assert.NotSame(t, before, GetDefault())
		assert.Same(t, l, GetDefault())
	})
}
