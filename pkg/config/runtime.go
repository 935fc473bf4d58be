package config

import (
	"context"
	"fmt"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	"github.com/transpoze/drivegate/pkg/api/middleware"
	"github.com/transpoze/drivegate/pkg/drive"
	"github.com/transpoze/drivegate/pkg/drive/memory"
	"github.com/transpoze/drivegate/pkg/folders"
	"github.com/transpoze/drivegate/pkg/gateway"
	"github.com/transpoze/drivegate/pkg/metrics"
	"github.com/transpoze/drivegate/pkg/metrics/prometheus"
	"github.com/transpoze/drivegate/pkg/staging"
	"github.com/transpoze/drivegate/pkg/transcode"
)

// Runtime is the gateway and the resources it holds, built from a Config.
type Runtime struct {
	Service     *gateway.Service
	Staging     *staging.Area
	Cache       folders.Cache
	HTTPMetrics middleware.Metrics
}

// Close releases the resources held by rt.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Cache == nil {
		return nil
	}
	return folders.CloseCache(rt.Cache)
}

// InitializeMetrics creates the Prometheus registry when metrics are
// enabled. It must run before InitializeGateway so the components pick up
// their collectors.
func InitializeMetrics(cfg *Config) bool {
	if !cfg.Metrics.Enabled {
		return false
	}
	metrics.InitRegistry()
	logger.Debug("Metrics registry initialized")
	return true
}

// NewDriveClient builds the Drive client selected by cfg.Backend.
func NewDriveClient(ctx context.Context, cfg drive.Config) (drive.Client, error) {
	switch cfg.Backend {
	case drive.BackendMemory:
		logger.Warn("Using in-memory Drive backend, nothing will reach Google Drive")
		return memory.New(), nil
	case drive.BackendGoogle, "":
		return drive.NewGoogleClient(ctx, cfg, prometheus.NewDriveMetrics())
	default:
		return nil, fmt.Errorf("unknown drive backend %q", cfg.Backend)
	}
}

// InitializeGateway wires the Drive client, folder cache, transcoder and
// staging area into a gateway.Service.
//
// The returned Runtime owns the cache; callers must Close it on shutdown.
func InitializeGateway(ctx context.Context, cfg *Config, version string) (*Runtime, error) {
	client, err := NewDriveClient(ctx, cfg.Drive)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}

	cache, err := folders.NewCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder cache: %w", err)
	}
	logger.Info("Folder cache ready", logger.KeyCacheType, cfg.Cache.Type, logger.KeySize, cache.Len())

	area, err := staging.New(cfg.Staging)
	if err != nil {
		_ = folders.CloseCache(cache)
		return nil, err
	}

	transcoder := transcode.NewFFmpeg(cfg.Transcoder, prometheus.NewTranscodeMetrics())
	logger.Debug("Transcoder configured", "output", transcoder.Format())

	svc, err := gateway.New(gateway.Deps{
		Client:        client,
		Cache:         cache,
		Transcoder:    transcoder,
		Staging:       area,
		Version:       version,
		FolderMetrics: prometheus.NewFolderMetrics(),
		UploadMetrics: prometheus.NewUploadMetrics(),
	})
	if err != nil {
		_ = folders.CloseCache(cache)
		return nil, err
	}

	return &Runtime{
		Service:     svc,
		Staging:     area,
		Cache:       cache,
		HTTPMetrics: prometheus.NewHTTPMetrics(),
	}, nil
}

// Deployment describes this configuration for traces and profiles.
func (c *Config) Deployment(version string) telemetry.Deployment {
	return telemetry.Deployment{
		Version:      version,
		DriveBackend: c.Drive.Backend,
		CacheType:    c.Cache.Type,
	}
}

// TracerConfig converts the telemetry section into the tracer's config.
func (c *Config) TracerConfig(version string) telemetry.Config {
	return telemetry.Config{
		Enabled:    c.Telemetry.Enabled,
		Endpoint:   c.Telemetry.Endpoint,
		Insecure:   c.Telemetry.Insecure,
		SampleRate: c.Telemetry.SampleRate,
		Deployment: c.Deployment(version),
	}
}

// ProfilerConfig converts the profiling section into the profiler's config.
func (c *Config) ProfilerConfig(version string) telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:      c.Telemetry.Profiling.Enabled,
		Endpoint:     c.Telemetry.Profiling.Endpoint,
		ProfileTypes: c.Telemetry.Profiling.ProfileTypes,
		Deployment:   c.Deployment(version),
	}
}
