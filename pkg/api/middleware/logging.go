package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/codes"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
)

const (
	// LegacyPrefix is the alias mount point for /api-prefixed clients.
	LegacyPrefix = "/api"

	// healthPrefix marks probe traffic, which is logged at DEBUG.
	healthPrefix = "/health"
)

// isHealthPath reports whether p is a health probe on either mount.
func isHealthPath(p string) bool {
	return strings.HasPrefix(strings.TrimPrefix(p, LegacyPrefix), healthPrefix)
}

// RequestContext starts the server span, attaches a LogContext to the
// request and logs the request once it completes. It must run after chi's
// RequestID and RealIP middleware.
func RequestContext(metrics Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			clientIP := ClientIP(r)

			ctx, span := telemetry.StartHTTPSpan(r, clientIP)
			defer span.End()

			lc := logger.NewLogContext(chimw.GetReqID(ctx), r.Method, clientIP).
				WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
			ctx = logger.WithContext(ctx, lc)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			duration := time.Since(start)

			span.SetName(r.Method + " " + routeOrPath(route, r))
			span.SetAttributes(telemetry.HTTPRoute(route), telemetry.HTTPStatus(status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			if metrics != nil {
				metrics.RecordRequest(r.Method, route, status, duration)
			}

			logCtx := logger.WithContext(ctx, lc.WithRoute(route))
			args := []any{
				logger.KeyPath, r.URL.Path,
				logger.KeyStatus, status,
				logger.KeyBytes, ww.BytesWritten(),
				logger.KeyDurationMs, logger.Duration(start),
			}
			switch {
			case isHealthPath(r.URL.Path):
				logger.DebugCtx(logCtx, "API request completed", args...)
			case status >= http.StatusInternalServerError:
				logger.WarnCtx(logCtx, "API request completed", args...)
			default:
				logger.InfoCtx(logCtx, "API request completed", args...)
			}
		})
	}
}

// routePattern returns the chi pattern that matched r, or "".
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

func routeOrPath(route string, r *http.Request) string {
	if route == "" {
		return r.URL.Path
	}
	return route
}
