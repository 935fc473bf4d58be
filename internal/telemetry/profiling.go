package telemetry

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/grafana/pyroscope-go"

	"github.com/transpoze/drivegate/internal/logger"
)

// ProfilingConfig configures Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool

	// Endpoint is the Pyroscope server URL.
	Endpoint string

	// ProfileTypes lists the profiles to collect by name, e.g. cpu or
	// inuse_space.
	ProfileTypes []string

	Deployment Deployment
}

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// ParseProfileTypes maps profile names to Pyroscope profile types.
func ParseProfileTypes(names []string) ([]pyroscope.ProfileType, error) {
	types := make([]pyroscope.ProfileType, 0, len(names))
	for _, name := range names {
		pt, ok := profileTypes[name]
		if !ok {
			return nil, fmt.Errorf("unknown profile type %q", name)
		}
		types = append(types, pt)
	}
	return types, nil
}

// Profiler is a running Pyroscope session. A nil *Profiler is valid and
// does nothing, which is what StartProfiler returns when profiling is off.
type Profiler struct {
	session *pyroscope.Profiler
	tags    map[string]string
}

// StartProfiler starts uploading profiles tagged with the deployment.
func StartProfiler(cfg ProfilingConfig) (*Profiler, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	types, err := ParseProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}
	enableRuntimeProfiles(cfg.ProfileTypes)

	tags := cfg.Deployment.Tags()
	session, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: ServiceName,
		ServerAddress:   cfg.Endpoint,
		Tags:            tags,
		ProfileTypes:    types,
		Logger:          profilerLogger{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	return &Profiler{session: session, tags: tags}, nil
}

// Tags returns the tags every profile carries.
func (p *Profiler) Tags() map[string]string {
	if p == nil {
		return nil
	}
	return p.tags
}

// Stop flushes and stops the session.
func (p *Profiler) Stop() error {
	if p == nil || p.session == nil {
		return nil
	}
	return p.session.Stop()
}

// enableRuntimeProfiles turns on the runtime sampling that mutex and block
// profiles depend on.
func enableRuntimeProfiles(names []string) {
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "mutex_"):
			runtime.SetMutexProfileFraction(5)
		case strings.HasPrefix(name, "block_"):
			runtime.SetBlockProfileRate(5)
		}
	}
}

// WithOperation runs fn with a pprof "operation" label, so profiles can be
// split per gateway operation.
func WithOperation(ctx context.Context, operation string, fn func(context.Context)) {
	pyroscope.TagWrapper(ctx, pyroscope.Labels("operation", operation), fn)
}

// profilerLogger routes Pyroscope's own logging through the gateway logger.
type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...any) {
	logger.Debug("pyroscope: " + fmt.Sprintf(format, args...))
}

func (profilerLogger) Debugf(format string, args ...any) {
	logger.Debug("pyroscope: " + fmt.Sprintf(format, args...))
}

func (profilerLogger) Errorf(format string, args ...any) {
	logger.Warn("pyroscope: " + fmt.Sprintf(format, args...))
}
