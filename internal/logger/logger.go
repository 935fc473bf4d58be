// Package logger is the process-wide structured logger.
//
// It wraps log/slog behind package-level functions so call sites never
// carry a logger around. Output goes to a colored text handler (for
// terminals) or a JSON handler. Level changes take effect immediately and
// are safe to make at runtime, which the config watcher relies on.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	level  = new(slog.LevelVar)
	format atomic.Value // "text" or "json"

	mu       sync.RWMutex
	out      io.Writer = os.Stdout
	useColor bool
	closer   io.Closer
	slogger  *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	format.Store("text")
	useColor = isTerminal(os.Stdout)
	rebuild()
}

// rebuild swaps the handler after an output or format change. Level changes
// go through the shared LevelVar and need no rebuild.
func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if f, _ := format.Load().(string); f == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = NewColorTextHandler(out, opts, useColor)
	}
	slogger = slog.New(h)
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Init applies cfg. Empty fields keep their current value.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var (
			w     io.Writer
			c     io.Closer
			color bool
		)
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w, color = os.Stdout, isTerminal(os.Stdout)
		case "stderr":
			w, color = os.Stderr, isTerminal(os.Stderr)
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			w, c = f, f
		}

		mu.Lock()
		if closer != nil {
			_ = closer.Close()
		}
		out, closer, useColor = w, c, color
		mu.Unlock()
	}

	if cfg.Level != "" {
		if _, ok := ParseLevel(cfg.Level); !ok {
			return fmt.Errorf("invalid log level %q", cfg.Level)
		}
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}

	rebuild()
	return nil
}

// InitWithWriter points the logger at w. Intended for tests.
func InitWithWriter(w io.Writer, lvl, f string, enableColor bool) {
	mu.Lock()
	out, closer, useColor = w, nil, enableColor
	mu.Unlock()

	if lvl != "" {
		SetLevel(lvl)
	}
	if f != "" {
		format.Store(strings.ToLower(f))
	}
	rebuild()
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, ok := ParseLevel(name); ok {
		level.Set(l)
	}
}

// GetLevel returns the current minimum level name.
func GetLevel() string {
	return level.Level().String()
}

// SetFormat switches between "text" and "json". Unknown formats are ignored.
func SetFormat(f string) {
	f = strings.ToLower(f)
	if f != "text" && f != "json" {
		return
	}
	format.Store(f)
	rebuild()
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

func enabled(l slog.Level) bool {
	return l >= level.Level()
}

// Debug logs at debug level: Debug("msg", "key", value, ...).
func Debug(msg string, args ...any) {
	if enabled(slog.LevelDebug) {
		get().Debug(msg, args...)
	}
}

// Info logs at info level.
func Info(msg string, args ...any) {
	if enabled(slog.LevelInfo) {
		get().Info(msg, args...)
	}
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	if enabled(slog.LevelWarn) {
		get().Warn(msg, args...)
	}
}

// Error logs at error level.
func Error(msg string, args ...any) {
	get().Error(msg, args...)
}

// DebugCtx logs at debug level, prefixed with the request fields in ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	if enabled(slog.LevelDebug) {
		get().Debug(msg, withContextFields(ctx, args)...)
	}
}

// InfoCtx logs at info level with request fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	if enabled(slog.LevelInfo) {
		get().Info(msg, withContextFields(ctx, args)...)
	}
}

// WarnCtx logs at warn level with request fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	if enabled(slog.LevelWarn) {
		get().Warn(msg, withContextFields(ctx, args)...)
	}
}

// ErrorCtx logs at error level with request fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	get().Error(msg, withContextFields(ctx, args)...)
}

// withContextFields prepends the LogContext fields so they lead the line.
func withContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := make([]any, 0, 12+len(args))
	add := func(k, v string) {
		if v != "" {
			fields = append(fields, k, v)
		}
	}
	add(KeyRequestID, lc.RequestID)
	add(KeyTraceID, lc.TraceID)
	add(KeySpanID, lc.SpanID)
	add(KeyMethod, lc.Method)
	add(KeyRoute, lc.Route)
	add(KeyClientIP, lc.ClientIP)

	return append(fields, args...)
}

// With returns a slog.Logger with pre-bound attributes.
func With(args ...any) *slog.Logger {
	return get().With(args...)
}

// Duration returns the milliseconds elapsed since start.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
