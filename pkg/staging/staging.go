// Package staging holds request bytes on local disk while they are
// transcoded and uploaded.
//
// Every staged file gets a random name inside the staging directory. The
// request that staged it must Remove it on every exit path; Sweep catches
// files orphaned by crashes.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/transpoze/drivegate/internal/bytesize"
	"github.com/transpoze/drivegate/internal/logger"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// Config configures the staging area.
type Config struct {
	// Dir is where request bodies are written. Defaults to a drivegate
	// directory under the OS temp dir.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// MaxUploadSize bounds a single staged file.
	MaxUploadSize bytesize.ByteSize `mapstructure:"max_upload_size" validate:"required" yaml:"max_upload_size"`

	// SweepAge is how old an abandoned staged file must be before removal.
	SweepAge time.Duration `mapstructure:"sweep_age" validate:"min=0" yaml:"sweep_age"`

	// SweepInterval is how often the sweeper runs. Zero takes the default of
	// one hour; a negative interval disables the sweeper.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Dir == "" {
		c.Dir = filepath.Join(os.TempDir(), "drivegate")
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 512 * bytesize.MiB
	}
	if c.SweepAge == 0 {
		c.SweepAge = 6 * time.Hour
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = time.Hour
	}
}

// Area is a staging directory.
type Area struct {
	dir      string
	maxBytes int64
}

// New creates the staging directory if needed.
func New(cfg Config) (*Area, error) {
	cfg.ApplyDefaults()
	if err := os.MkdirAll(cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Area{dir: cfg.Dir, maxBytes: int64(cfg.MaxUploadSize)}, nil
}

// Dir returns the staging directory.
func (a *Area) Dir() string {
	return a.dir
}

// MaxBytes returns the per-file size limit.
func (a *Area) MaxBytes() int64 {
	return a.maxBytes
}

// File is a staged file plus any outputs derived from it.
type File struct {
	Path         string
	OriginalName string
	Size         int64

	mu      sync.Mutex
	derived []string
	removed bool
}

// Save copies r into a new staged file. The extension of originalName is
// kept so tools that sniff by suffix behave. Bodies larger than the limit
// are rejected with PayloadTooLarge and nothing is left on disk.
func (a *Area) Save(r io.Reader, originalName string) (*File, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 16 {
		ext = ""
	}
	path := filepath.Join(a.dir, uuid.NewString()+ext)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged file: %w", err)
	}

	// Read one byte past the limit to detect oversize bodies.
	n, copyErr := io.Copy(out, io.LimitReader(r, a.maxBytes+1))
	closeErr := out.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to stage upload: %w", copyErr)
	case closeErr != nil:
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to stage upload: %w", closeErr)
	case n > a.maxBytes:
		_ = os.Remove(path)
		return nil, gwerrors.NewPayloadTooLargeError("staging.save", uint64(a.maxBytes))
	}

	logger.Debug("Upload staged", logger.KeyPath, path, logger.KeySize, n)
	return &File{Path: path, OriginalName: originalName, Size: n}, nil
}

// Derived returns a sibling path for an output produced from f, e.g.
// Derived("_converted.wav"). The path is removed together with f.
func (f *File) Derived(suffix string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.Path + suffix
	f.derived = append(f.derived, p)
	return p
}

// Remove deletes f and its derived outputs. It is safe to call more than once.
func (f *File) Remove() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removed {
		return
	}
	f.removed = true
	for _, p := range append([]string{f.Path}, f.derived...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove staged file", logger.KeyPath, p, logger.KeyError, err)
		}
	}
}

// Sweep removes regular files in the staging directory older than age and
// returns how many were removed. Files still being written are recent and
// therefore untouched.
func (a *Area) Sweep(age time.Duration) int {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Staging sweep failed", logger.KeyPath, a.dir, logger.KeyError, err)
		}
		return 0
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		p := filepath.Join(a.dir, e.Name())
		if err := os.Remove(p); err != nil {
			logger.Warn("Staging sweep could not remove file", logger.KeyPath, p, logger.KeyError, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Info("Staging sweep removed abandoned files", logger.KeyCount, removed)
	}
	return removed
}

// RunSweeper sweeps once immediately and then every interval until ctx is
// done.
func (a *Area) RunSweeper(ctx context.Context, age, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		a.Sweep(age)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.Sweep(age)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Usage is a snapshot of the staging filesystem's capacity.
type Usage struct {
	FreeBytes  uint64
	TotalBytes uint64
}

// Usage reports free and total bytes on the staging filesystem.
func (a *Area) Usage() (Usage, error) {
	return diskUsage(a.dir)
}
