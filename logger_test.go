package mmapbuf

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_BufferEvents(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, path := openRW(t, "abc", WithLogger(logger), WithIncrement(8))
	require.NoError(t, b.Append([]byte(strings.Repeat("x", 10))))

	logs := out.String()
	assert.Contains(t, logs, `"msg":"buffer opened"`)
	assert.Contains(t, logs, `"msg":"remapped"`)
	assert.Contains(t, logs, `"msg":"splice applied"`)
	assert.Contains(t, logs, `"path":"`+path+`"`)
}

func TestLogger_StringReadFailure(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, _ := openRW(t, "abc", WithLogger(logger))
	require.NoError(t, b.Close())
	out.Reset()

	assert.Empty(t, b.String())
	assert.Contains(t, out.String(), `"msg":"string read failed"`)
	assert.Contains(t, out.String(), ErrClosed.Error())
}

func TestLogger_Cleanup(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&out, nil))

	logger.LogCleanup(t.Context(), "segment", nil)
	assert.Empty(t, out.String())

	logger.WithKey(7).LogCleanup(t.Context(), "segment", errors.New("busy"))
	assert.Contains(t, out.String(), "cleanup failed")
	assert.Contains(t, out.String(), "ipc_key=7")
}

func TestNoopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopLogger().LogRemap(t.Context(), 1, 2, nil)
	})
}
