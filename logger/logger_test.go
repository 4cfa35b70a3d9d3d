package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Should write text output at the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: "warn", Output: &buf})

		l.Info("hidden")
		l.Warn("shown", "path", "a.md")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
		assert.Contains(t, out, "a.md")
	})

	t.Run("Should write JSON when enabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: "debug", Output: &buf, JSON: true})

		l.Debug("structured", "count", 3)

		out := strings.TrimSpace(buf.String())
		assert.True(t, strings.HasPrefix(out, "{") && strings.HasSuffix(out, "}"))
		assert.Contains(t, out, `"msg":"structured"`)
	})

	t.Run("Should fall back to info for unknown levels", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Level: "loud", Output: &buf})

		l.Debug("hidden")
		l.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestInit(t *testing.T) {
	prev := Default()
	defer func() {
		mu.Lock()
		defaultLogger = prev
		mu.Unlock()
	}()

	assert.Error(t, Init(&Config{Level: "loud"}))

	var buf bytes.Buffer
	require.NoError(t, Init(&Config{Level: "debug", Output: &buf}))
	Debug("from default")
	assert.Contains(t, buf.String(), "from default")
}

func TestFromContext(t *testing.T) {
	t.Run("Should return the logger stored in the context", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(&Config{Output: &buf})
		ctx := WithContext(context.Background(), l)

		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("Should return the default logger otherwise", func(t *testing.T) {
		assert.Same(t, Default(), FromContext(context.Background()))
	})
}
