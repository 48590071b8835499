package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger is the process logger. Tests may replace it directly; when unset it
// is built on first use with development settings.
var Logger *slog.Logger

var loggerMu sync.Mutex

// InitLogger installs the process logger: JSON lines in production, text
// otherwise, dropping records below level.
func InitLogger(production bool, level slog.Level) {
	l := newLogger(os.Stdout, production, level)

	loggerMu.Lock()
	Logger = l
	loggerMu.Unlock()
	slog.SetDefault(l)
}

func newLogger(w io.Writer, production bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel reads a LOG_LEVEL value such as "debug" or "WARN". Empty or
// unknown values mean info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func current() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if Logger == nil {
		Logger = newLogger(os.Stdout, false, slog.LevelInfo)
	}
	return Logger
}

// WithContext returns a logger carrying the chi request id, when present
func WithContext(ctx context.Context) *slog.Logger {
	l := current()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		return l.With("request_id", reqID)
	}
	return l
}

// WithError is WithContext plus the error that ended the request.
func WithError(ctx context.Context, err error) *slog.Logger {
	return WithContext(ctx).With("error", err)
}

func Info(msg string, args ...any)  { current().Info(msg, args...) }
func Warn(msg string, args ...any)  { current().Warn(msg, args...) }
func Error(msg string, args ...any) { current().Error(msg, args...) }
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}

// WithSymbol tags records with the stock symbol being analyzed.
func WithSymbol(symbol string) *slog.Logger {
	return current().With("symbol", symbol)
}

// WithConsole tags records with the console they belong to.
func WithConsole(consoleID string) *slog.Logger {
	return current().With("console_id", consoleID)
}

// WithStage tags records with a pipeline stage name.
func WithStage(stage string) *slog.Logger {
	return current().With("stage", stage)
}
