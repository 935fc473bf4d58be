package logger

import (
	"log/slog"
)

// Field keys. Use these instead of ad hoc strings so log queries stay stable.
const (
	// Tracing and request correlation
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"

	// HTTP
	KeyMethod   = "method"
	KeyRoute    = "route"
	KeyPath     = "path"
	KeyStatus   = "status"
	KeyBytes    = "bytes"
	KeyClientIP = "client_ip"

	// Drive entities
	KeyFolderID   = "folder_id"
	KeyFolderName = "folder_name"
	KeyParentID   = "parent_id"
	KeyFileID     = "file_id"
	KeyFileName   = "file_name"
	KeyMimeType   = "mime_type"
	KeyEmail      = "email"
	KeyRole       = "role"
	KeyQuery      = "query"
	KeyLevel      = "level_index"

	// Credentials (never secrets, only identities)
	KeyAccount     = "account"
	KeyImpersonate = "impersonate"

	// Cache
	KeyCacheKey  = "cache_key"
	KeyCacheHit  = "cache_hit"
	KeyCacheType = "cache_type"

	// Generic
	KeySize       = "size"
	KeyCount      = "count"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyComponent  = "component"
	KeyAddress    = "address"
)

// Err returns an error attribute, or an empty attribute for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// FolderID returns a folder id attribute.
func FolderID(id string) slog.Attr {
	return slog.String(KeyFolderID, id)
}

// FileID returns a file id attribute.
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}
