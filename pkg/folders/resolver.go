// Package folders resolves folder names to Drive ids.
//
// The Resolver implements find-or-create on top of drive.Client with a
// Cache in front of it; HierarchyBuilder chains three resolutions into a
// fixed top/middle/leaf path. Both are safe for concurrent use.
//
// Concurrent Ensure calls for the same key within one process collapse into
// a single Drive query (and at most one create) via singleflight. Separate
// processes can still race and produce duplicate folders; the deterministic
// tie-break in pickFolder makes every process converge on the same one.
package folders

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/transpoze/drivegate/internal/logger"
	"github.com/transpoze/drivegate/internal/telemetry"
	"github.com/transpoze/drivegate/pkg/drive"
	gwerrors "github.com/transpoze/drivegate/pkg/errors"
)

// Resolution outcomes reported to Metrics.
const (
	OutcomeCached  = "cached"
	OutcomeFound   = "found"
	OutcomeCreated = "created"
	OutcomeError   = "error"
)

// Metrics records resolver activity. A nil Metrics disables collection.
type Metrics interface {
	RecordLookup(hit bool)
	RecordResolution(outcome string, duration time.Duration)
	SetCacheSize(n int)
}

// Resolver maps (parent, name) pairs to Drive folder ids.
type Resolver struct {
	client  drive.Client
	cache   Cache
	metrics Metrics
	group   singleflight.Group
}

// NewResolver creates a resolver that owns cache. A nil cache gets a fresh
// MemoryCache.
func NewResolver(client drive.Client, cache Cache, metrics Metrics) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Resolver{
		client:  client,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() Cache {
	return r.cache
}

func flightKey(k Key) string {
	return k.ParentID + "\x00" + k.Name
}

// parentOrRoot maps the empty parent to the Drive root alias.
func parentOrRoot(parentID string) string {
	if parentID == "" {
		return drive.RootID
	}
	return parentID
}

// lookup consults the cache and records the hit or miss.
func (r *Resolver) lookup(key Key) (string, bool) {
	id, ok := r.cache.Get(key)
	if r.metrics != nil {
		r.metrics.RecordLookup(ok)
	}
	return id, ok
}

func (r *Resolver) record(outcome string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordResolution(outcome, time.Since(start))
	r.metrics.SetCacheSize(r.cache.Len())
}

// Ensure returns the id of the folder named name under parentID, creating
// it when Drive has none. An empty parentID means the root.
func (r *Resolver) Ensure(ctx context.Context, name, parentID string) (string, error) {
	start := time.Now()
	key := Key{ParentID: parentID, Name: name}

	ctx, span := telemetry.StartFolderSpan(ctx, telemetry.SpanFolderEnsure, name, parentID)
	defer span.End()

	if id, ok := r.lookup(key); ok {
		span.SetAttributes(telemetry.CacheHit(true))
		logger.DebugCtx(ctx, "Folder cache hit", logger.KeyFolderName, name, logger.KeyParentID, parentID, logger.KeyFolderID, id)
		r.record(OutcomeCached, start)
		return id, nil
	}
	span.SetAttributes(telemetry.CacheHit(false))

	// The shared call must not die with whichever request happened to start it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := r.group.Do(flightKey(key), func() (any, error) {
		if id, ok := r.cache.Get(key); ok {
			return resolution{id: id, outcome: OutcomeCached}, nil
		}
		id, found, err := r.findRemote(flightCtx, key)
		if err != nil {
			return nil, err
		}
		if found {
			return resolution{id: id, outcome: OutcomeFound}, nil
		}
		id, err = r.createRemote(flightCtx, key)
		if err != nil {
			return nil, err
		}
		return resolution{id: id, outcome: OutcomeCreated}, nil
	})
	if err != nil {
		telemetry.RecordError(ctx, err)
		r.record(OutcomeError, start)
		return "", err
	}

	res := v.(resolution)
	if shared {
		logger.DebugCtx(ctx, "Folder resolution shared", logger.KeyFolderName, name, logger.KeyFolderID, res.id)
	}
	r.record(res.outcome, start)
	return res.id, nil
}

// resolution is the result of one shared Ensure flight. Every caller that
// joins the flight records the same outcome.
type resolution struct {
	id      string
	outcome string
}

// Find returns the id of an existing folder without creating one.
// found is false when Drive has no matching folder.
func (r *Resolver) Find(ctx context.Context, name, parentID string) (id string, found bool, err error) {
	start := time.Now()
	key := Key{ParentID: parentID, Name: name}

	ctx, span := telemetry.StartFolderSpan(ctx, telemetry.SpanFolderFind, name, parentID)
	defer span.End()

	if id, ok := r.lookup(key); ok {
		span.SetAttributes(telemetry.CacheHit(true))
		r.record(OutcomeCached, start)
		return id, true, nil
	}
	span.SetAttributes(telemetry.CacheHit(false))

	id, found, err = r.findRemote(ctx, key)
	if err != nil {
		telemetry.RecordError(ctx, err)
		r.record(OutcomeError, start)
		return "", false, err
	}
	if found {
		r.record(OutcomeFound, start)
	}
	return id, found, nil
}

// Create always creates a new folder and points the cache at it, even when
// a folder with the same name already exists.
func (r *Resolver) Create(ctx context.Context, name, parentID string) (string, error) {
	start := time.Now()
	ctx, span := telemetry.StartFolderSpan(ctx, telemetry.SpanFolderCreate, name, parentID)
	defer span.End()

	id, err := r.createRemote(ctx, Key{ParentID: parentID, Name: name})
	if err != nil {
		telemetry.RecordError(ctx, err)
		r.record(OutcomeError, start)
		return "", err
	}
	r.record(OutcomeCreated, start)
	return id, nil
}

// Forget drops every cache entry pointing at id. Call it after deleting
// the folder.
func (r *Resolver) Forget(id string) int {
	n := r.cache.InvalidateByValue(id)
	if r.metrics != nil {
		r.metrics.SetCacheSize(r.cache.Len())
	}
	return n
}

// Reset empties the cache.
func (r *Resolver) Reset() {
	r.cache.Clear()
	if r.metrics != nil {
		r.metrics.SetCacheSize(0)
	}
}

// findRemote queries Drive for non-trashed folders named key.Name under the
// key's parent and caches the chosen match.
func (r *Resolver) findRemote(ctx context.Context, key Key) (string, bool, error) {
	entries, err := r.client.List(ctx, drive.Query{
		Name:     key.Name,
		ParentID: parentOrRoot(key.ParentID),
		Kind:     drive.KindFolder,
	})
	if err != nil {
		return "", false, asRemoteError("folders.find", err)
	}

	match := pickFolder(entries)
	if match == nil {
		return "", false, nil
	}
	if len(entries) > 1 {
		logger.WarnCtx(ctx, "Multiple folders share a name, using the oldest",
			logger.KeyFolderName, key.Name,
			logger.KeyParentID, key.ParentID,
			logger.KeyFolderID, match.ID,
			logger.KeyCount, len(entries))
	}

	r.cache.Put(key, match.ID)
	return match.ID, true, nil
}

// createRemote creates the folder and caches its id.
func (r *Resolver) createRemote(ctx context.Context, key Key) (string, error) {
	entry, err := r.client.CreateFolder(ctx, key.Name, key.ParentID)
	if err != nil {
		return "", asRemoteError("folders.create", err)
	}
	if entry == nil || entry.ID == "" {
		return "", gwerrors.NewCreateFailedError("folders.create", key.Name)
	}

	r.cache.Put(key, entry.ID)
	logger.InfoCtx(ctx, "Folder created",
		logger.KeyFolderName, key.Name,
		logger.KeyParentID, key.ParentID,
		logger.KeyFolderID, entry.ID)
	telemetry.AddEvent(ctx, "folder.created")
	return entry.ID, nil
}

// pickFolder selects among matches: the oldest by creation time, ties
// broken by the lexicographically smallest id. Entries without an id are
// ignored.
func pickFolder(entries []*drive.Entry) *drive.Entry {
	candidates := make([]*drive.Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil && e.ID != "" {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if !a.CreatedTime.Equal(b.CreatedTime) {
			return a.CreatedTime.Before(b.CreatedTime)
		}
		return a.ID < b.ID
	})
	return candidates[0]
}

// asRemoteError keeps gateway errors as they are and classifies anything
// else as a Drive transport failure.
func asRemoteError(op string, err error) error {
	if gwerrors.CodeOf(err) != 0 {
		return err
	}
	return gwerrors.NewRemoteUnavailableError(op, err)
}
