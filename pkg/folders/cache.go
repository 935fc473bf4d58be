package folders

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Key identifies a folder by its parent and its exact name.
// An empty ParentID stands for the Drive root.
type Key struct {
	ParentID string
	Name     string
}

// String renders the key for logs and single-flight grouping.
func (k Key) String() string {
	return k.ParentID + "/" + k.Name
}

// Cache maps folder keys to resolved Drive ids.
//
// A cached id is trusted until it is invalidated or evicted; the resolver
// never re-validates it against Drive. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key Key) (string, bool)
	Put(key Key, id string)
	Invalidate(key Key)

	// InvalidateByValue removes every key mapped to id and returns how
	// many were removed. Used when a folder is deleted by id.
	InvalidateByValue(id string) int

	Clear()
	Len() int
}

// Cache types accepted by CacheConfig.Type.
const (
	CacheMemory = "memory"
	CacheLRU    = "lru"
	CacheBadger = "badger"
)

// CacheConfig selects and sizes the folder cache.
type CacheConfig struct {
	// Type is memory (unbounded map), lru (bounded, expiring) or badger
	// (persistent across restarts).
	Type string `mapstructure:"type" validate:"required,oneof=memory lru badger" yaml:"type"`

	// Capacity bounds the lru cache. Zero takes the default of 10000; a
	// negative capacity leaves it unbounded.
	Capacity int `mapstructure:"capacity" yaml:"capacity"`

	// TTL expires lru and badger entries. Zero disables expiry.
	TTL time.Duration `mapstructure:"ttl" validate:"min=0" yaml:"ttl"`

	// Path is the badger directory.
	Path string `mapstructure:"path" validate:"required_if=Type badger" yaml:"path"`
}

// ApplyDefaults fills zero values.
func (c *CacheConfig) ApplyDefaults() {
	if c.Type == "" {
		c.Type = CacheMemory
	}
	if c.Type == CacheLRU && c.Capacity == 0 {
		c.Capacity = 10000
	}
}

// NewCache builds the cache described by cfg. Callers should Close the
// result (via CloseCache) when it holds resources.
func NewCache(cfg CacheConfig) (Cache, error) {
	cfg.ApplyDefaults()
	switch cfg.Type {
	case CacheMemory:
		return NewMemoryCache(), nil
	case CacheLRU:
		return NewLRUCache(cfg.Capacity, cfg.TTL), nil
	case CacheBadger:
		return OpenBadgerCache(cfg.Path, cfg.TTL)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

// CloseCache releases resources held by c, if any.
func CloseCache(c Cache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// MemoryCache is an unbounded, mutex-guarded map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]string
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[Key]string)}
}

func (c *MemoryCache) Get(key Key) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.entries[key]
	return id, ok
}

func (c *MemoryCache) Put(key Key, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = id
}

func (c *MemoryCache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryCache) InvalidateByValue(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, v := range c.entries {
		if v == id {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]string)
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
