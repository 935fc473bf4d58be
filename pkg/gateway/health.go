package gateway

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/transpoze/drivegate/pkg/drive"
	"github.com/transpoze/drivegate/pkg/staging"
)

// HealthCheckTimeout bounds the Drive probe made by Health and Ready.
const HealthCheckTimeout = 5 * time.Second

// Health is a point-in-time health report.
type Health struct {
	Timestamp time.Time
	Uptime    time.Duration
	Service   string
	Version   string

	DriveConnected bool
	DriveError     string
	Account        *drive.About

	MemAlloc        uint64
	MemSys          uint64
	FolderCacheSize int

	Staging      *staging.Usage
	StagingError string
}

// Health probes Drive and gathers process statistics. It never fails: probe
// errors are reported inside the result.
func (s *Service) Health(ctx context.Context) Health {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	h := Health{
		Timestamp:       time.Now().UTC(),
		Uptime:          time.Since(s.started),
		Service:         ServiceName,
		Version:         s.version,
		MemAlloc:        mem.Alloc,
		MemSys:          mem.Sys,
		FolderCacheSize: s.CacheSize(),
	}

	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	if about, err := s.client.About(ctx); err != nil {
		h.DriveError = err.Error()
	} else {
		h.DriveConnected = true
		h.Account = about
	}

	if u, err := s.staging.Usage(); err != nil {
		h.StagingError = err.Error()
	} else {
		h.Staging = &u
	}
	return h
}

// Ready returns an error when Drive is unreachable or the staging
// filesystem cannot be inspected.
func (s *Service) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	if _, err := s.client.About(ctx); err != nil {
		return fmt.Errorf("drive unreachable: %w", err)
	}
	if _, err := s.staging.Usage(); err != nil {
		return fmt.Errorf("staging unavailable: %w", err)
	}
	return nil
}
