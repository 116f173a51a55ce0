package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
)

var (
	opLogger atomic.Pointer[slog.Logger]
	logLevel = new(slog.LevelVar)
)

func init() {
	logLevel.Set(slog.LevelInfo)
	opLogger.Store(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

// Op returns the operational logger.
func Op() *slog.Logger {
	return opLogger.Load()
}

// Init reconfigures the operational logger.
// format: "text" (default) or "json"; level: "debug", "info", "warn", "error".
func Init(format, level string) {
	InitWriter(os.Stderr, format, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, format, level string) {
	SetLevelFromString(level)
	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	opLogger.Store(logger)
	slog.SetDefault(logger)
}

// SetLevelFromString sets the log level. Unknown values leave it unchanged.
func SetLevelFromString(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn", "warning":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	}
}

// Level returns the current level.
func Level() slog.Level {
	return logLevel.Level()
}

// FromContext returns the operational logger annotated with the active trace
// and span ids, if any.
func FromContext(ctx context.Context) *slog.Logger {
	l := opLogger.Load()
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With("trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String())
}
