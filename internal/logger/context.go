package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped fields injected by the *Ctx functions.
type LogContext struct {
	RequestID string    // chi request id
	TraceID   string    // OpenTelemetry trace id
	SpanID    string    // OpenTelemetry span id
	Method    string    // HTTP method
	Route     string    // chi route pattern, e.g. /folders/{id}
	ClientIP  string    // client address without port
	StartTime time.Time // request start
}

// WithContext returns a copy of ctx carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext returns the LogContext in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext starts a LogContext for an HTTP request.
func NewLogContext(requestID, method, clientIP string) *LogContext {
	return &LogContext{
		RequestID: requestID,
		Method:    method,
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone returns a shallow copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithRoute returns a copy with the route pattern set.
func (lc *LogContext) WithRoute(route string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Route = route
	}
	return c
}

// WithTrace returns a copy with trace identifiers set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.TraceID = traceID
		c.SpanID = spanID
	}
	return c
}

// DurationMs returns the milliseconds since StartTime.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return Duration(lc.StartTime)
}
