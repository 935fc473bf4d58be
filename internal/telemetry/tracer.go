package telemetry

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for gateway spans.
const (
	// ========================================================================
	// HTTP attributes
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"

	// ========================================================================
	// Drive attributes
	// ========================================================================
	AttrDriveBackend    = "drive.backend"
	AttrDriveOperation  = "drive.operation"
	AttrDriveFileID     = "drive.file_id"
	AttrDriveFileName   = "drive.file_name"
	AttrDriveFolderName = "drive.folder_name"
	AttrDriveParentID   = "drive.parent_id"
	AttrDriveQuery      = "drive.query"
	AttrDriveResults    = "drive.results"
	AttrPermissionRole  = "drive.permission_role"

	// ========================================================================
	// Cache attributes
	// ========================================================================
	AttrCacheHit  = "cache.hit"
	AttrCacheType = "cache.type"

	// ========================================================================
	// Media attributes
	// ========================================================================
	AttrMediaFormat = "media.format"
)

// Span names.
const (
	SpanHTTPRequest = "http.request"

	SpanFolderEnsure    = "folders.ensure"
	SpanFolderFind      = "folders.find"
	SpanFolderCreate    = "folders.create"
	SpanFolderHierarchy = "folders.hierarchy"

	SpanUpload    = "uploads.upload"
	SpanTranscode = "transcode.pcm"
	SpanRecording = "recordings.save"
)

// ClientIP returns an attribute for the client address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// HTTPRoute returns an attribute for the matched route pattern.
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus returns an attribute for the response status.
func HTTPStatus(status int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, status)
}

// FileID returns an attribute for a Drive file or folder id.
func FileID(id string) attribute.KeyValue {
	return attribute.String(AttrDriveFileID, id)
}

// FileName returns an attribute for a file display name.
func FileName(name string) attribute.KeyValue {
	return attribute.String(AttrDriveFileName, name)
}

// FolderName returns an attribute for a folder name.
func FolderName(name string) attribute.KeyValue {
	return attribute.String(AttrDriveFolderName, name)
}

// ParentID returns an attribute for a parent folder id. The Drive root is
// recorded as "root".
func ParentID(id string) attribute.KeyValue {
	if id == "" {
		id = "root"
	}
	return attribute.String(AttrDriveParentID, id)
}

// DriveQuery returns an attribute for a Drive search expression.
func DriveQuery(q string) attribute.KeyValue {
	return attribute.String(AttrDriveQuery, q)
}

// CacheHit returns an attribute recording whether the path cache answered.
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// MediaFormat returns an attribute describing an output media format.
func MediaFormat(format string) attribute.KeyValue {
	return attribute.String(AttrMediaFormat, format)
}

// StartDriveSpan starts a span around one remote Drive call, named
// "drive.<operation>".
func StartDriveSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, attribute.String(AttrDriveOperation, operation))
	all = append(all, attrs...)
	return StartSpan(ctx, "drive."+operation, trace.WithAttributes(all...))
}

// StartFolderSpan starts a folder resolution span.
func StartFolderSpan(ctx context.Context, name, folderName, parentID string) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(FolderName(folderName), ParentID(parentID)))
}

// StartUploadSpan starts a span for a file upload.
func StartUploadSpan(ctx context.Context, fileName, parentID string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanUpload, trace.WithAttributes(FileName(fileName), ParentID(parentID)))
}

// StartHTTPSpan starts a server span for an incoming request, continuing
// any trace context carried in its headers.
func StartHTTPSpan(r *http.Request, clientIP string) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return StartSpan(ctx, SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, r.Method),
			ClientIP(clientIP),
		),
	)
}
