package folders

import (
	"context"
	"fmt"
	"strings"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// Hierarchy holds the ids of a resolved top/middle/leaf folder chain.
type Hierarchy struct {
	TopID    string
	MiddleID string
	LeafID   string
}

// LevelError reports which level of a hierarchy failed to resolve.
// Levels are numbered from 1 (top) to 3 (leaf).
type LevelError struct {
	Level int
	Name  string
	Err   error
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("hierarchy level %d (%q): %v", e.Level, e.Name, e.Err)
}

func (e *LevelError) Unwrap() error {
	return e.Err
}

// HierarchyBuilder materializes three-level folder paths.
type HierarchyBuilder struct {
	resolver *Resolver
}

// NewHierarchyBuilder creates a builder on top of resolver.
func NewHierarchyBuilder(resolver *Resolver) *HierarchyBuilder {
	return &HierarchyBuilder{resolver: resolver}
}

// EnsureHierarchy resolves top at the root, middle under top and leaf under
// middle, creating whatever is missing. Levels resolve strictly in order
// because each needs its parent's id. A failure stops the chain; levels
// already resolved stay cached so a retry resumes where it failed.
func (b *HierarchyBuilder) EnsureHierarchy(ctx context.Context, top, middle, leaf string) (Hierarchy, error) {
	names := []string{top, middle, leaf}

	var missing []string
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			missing = append(missing, fmt.Sprintf("level %d", i+1))
		}
	}
	if len(missing) > 0 {
		return Hierarchy{}, gwerrors.NewInvalidArgumentsError("folders.hierarchy",
			"missing folder name for "+strings.Join(missing, ", "))
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanFolderHierarchy)
	defer span.End()

	ids := make([]string, len(names))
	parent := ""
	for i, name := range names {
		id, err := b.resolver.Ensure(ctx, name, parent)
		if err != nil {
			lerr := &LevelError{Level: i + 1, Name: name, Err: err}
			telemetry.RecordError(ctx, lerr)
			logger.WarnCtx(ctx, "Hierarchy resolution failed",
				logger.KeyLevel, i+1,
				logger.KeyFolderName, name,
				logger.KeyParentID, parent,
				logger.KeyError, err)
			return Hierarchy{}, lerr
		}
		ids[i] = id
		parent = id
	}

	h := Hierarchy{TopID: ids[0], MiddleID: ids[1], LeafID: ids[2]}
	logger.DebugCtx(ctx, "Hierarchy resolved",
		logger.KeyPath, strings.Join(names, "/"),
		logger.KeyFolderID, h.LeafID)
	return h, nil
}
