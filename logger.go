package mmapbuf

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with buffer-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPath adds the backing file path to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithKey adds an IPC key field to the logger.
func (l *Logger) WithKey(key int) *Logger {
	return &Logger{
		Logger: l.Logger.With("ipc_key", key),
	}
}

// LogOpen logs the creation of a buffer.
func (l *Logger) LogOpen(ctx context.Context, kind string, length, capacity int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"kind", kind,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "buffer opened",
			"kind", kind,
			"length", length,
			"capacity", capacity,
		)
	}
}

// LogSplice logs a range replacement.
func (l *Logger) LogSplice(ctx context.Context, begin, remove, insert, length int, err error) {
	if err != nil {
		l.DebugContext(ctx, "splice rejected",
			"begin", begin,
			"remove", remove,
			"insert", insert,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "splice applied",
			"begin", begin,
			"remove", remove,
			"insert", insert,
			"length", length,
		)
	}
}

// LogRemap logs a capacity change.
func (l *Logger) LogRemap(ctx context.Context, from, to int, err error) {
	if err != nil {
		l.WarnContext(ctx, "remap failed",
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remapped",
			"from", from,
			"to", to,
		)
	}
}

// LogInvalid logs a remap that could not be rolled back.
func (l *Logger) LogInvalid(ctx context.Context, capacity int, cause, restoreErr error) {
	l.ErrorContext(ctx, "buffer left without a mapping",
		"capacity", capacity,
		"error", cause,
		"restore_error", restoreErr,
	)
}

// LogIPC logs creation or attachment of a shared segment.
func (l *Logger) LogIPC(ctx context.Context, key int, created bool, size int) {
	l.InfoContext(ctx, "ipc segment ready",
		"ipc_key", key,
		"created", created,
		"size", size,
	)
}

// LogCleanup logs a best-effort cleanup step that failed.
func (l *Logger) LogCleanup(ctx context.Context, what string, err error) {
	if err != nil {
		l.WarnContext(ctx, "cleanup failed",
			"what", what,
			"error", err,
		)
	}
}
