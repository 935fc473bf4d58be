package handlers

import (
	"net/http"
	"time"

	"github.com/transpoze/drivegate/pkg/gateway"
)

// HealthHandler handles health check endpoints.
//
// Health endpoints are exempt from rate limiting and provide:
//   - Liveness probe with a Drive connectivity report
//   - Readiness probe that fails while Drive or staging is unusable
type HealthHandler struct {
	svc *gateway.Service
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(svc *gateway.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// UserInfo identifies the account the gateway acts as.
type UserInfo struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// StorageQuota reports Drive storage in bytes. Limit is zero for
// unlimited accounts.
type StorageQuota struct {
	Limit        int64 `json:"limit"`
	Usage        int64 `json:"usage"`
	UsageInDrive int64 `json:"usageInDrive"`
}

// MemoryInfo reports Go heap statistics in bytes.
type MemoryInfo struct {
	Alloc uint64 `json:"alloc"`
	Sys   uint64 `json:"sys"`
}

// StagingInfo reports free and total bytes on the staging filesystem.
type StagingInfo struct {
	Free  uint64 `json:"free"`
	Total uint64 `json:"total"`
	Error string `json:"error,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
	Uptime          float64       `json:"uptime"`
	Service         string        `json:"service"`
	Version         string        `json:"version"`
	DriveConnection string        `json:"driveConnection"`
	DriveAPIStatus  string        `json:"driveApiStatus"`
	DriveError      string        `json:"driveError,omitempty"`
	User            *UserInfo     `json:"user,omitempty"`
	StorageQuota    *StorageQuota `json:"storageQuota,omitempty"`
	Memory          MemoryInfo    `json:"memory"`
	FolderCacheSize int           `json:"folderCacheSize"`
	Staging         StagingInfo   `json:"staging"`
}

// Liveness handles GET /health.
//
// Always returns 200 OK while the process is serving. Drive problems are
// reported in the body rather than through the status code.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	report := h.svc.Health(r.Context())

	resp := HealthResponse{
		Status:          "ok",
		Timestamp:       report.Timestamp,
		Uptime:          report.Uptime.Seconds(),
		Service:         report.Service,
		Version:         report.Version,
		DriveConnection: "disconnected",
		DriveAPIStatus:  "error",
		DriveError:      report.DriveError,
		Memory:          MemoryInfo{Alloc: report.MemAlloc, Sys: report.MemSys},
		FolderCacheSize: report.FolderCacheSize,
		Staging:         StagingInfo{Error: report.StagingError},
	}
	if report.DriveConnected {
		resp.DriveConnection = "connected"
		resp.DriveAPIStatus = "ok"
	}
	if a := report.Account; a != nil {
		resp.User = &UserInfo{Email: a.UserEmail, DisplayName: a.UserName}
		resp.StorageQuota = &StorageQuota{Limit: a.QuotaLimit, Usage: a.QuotaUsage, UsageInDrive: a.UsageInDrive}
	}
	if s := report.Staging; s != nil {
		resp.Staging.Free = s.FreeBytes
		resp.Staging.Total = s.TotalBytes
	}

	writeJSON(w, http.StatusOK, resp)
}

// Readiness handles GET /health/ready.
//
// Returns 503 Service Unavailable when Drive cannot be reached or the
// staging directory cannot be inspected.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":           gateway.ServiceName,
		"folder_cache_size": h.svc.CacheSize(),
	}))
}
