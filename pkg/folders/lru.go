package folders

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRUCache bounds the folder cache by entry count and age.
// Evicted keys are simply re-resolved against Drive on next use.
type LRUCache struct {
	lru *expirable.LRU[Key, string]
}

// NewLRUCache creates a cache holding at most capacity entries (<= 0 = no
// limit), each expiring after ttl (0 = never).
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	return &LRUCache{lru: expirable.NewLRU[Key, string](capacity, nil, ttl)}
}

func (c *LRUCache) Get(key Key) (string, bool) {
	return c.lru.Get(key)
}

func (c *LRUCache) Put(key Key, id string) {
	c.lru.Add(key, id)
}

func (c *LRUCache) Invalidate(key Key) {
	c.lru.Remove(key)
}

func (c *LRUCache) InvalidateByValue(id string) int {
	removed := 0
	for _, k := range c.lru.Keys() {
		if v, ok := c.lru.Peek(k); ok && v == id {
			if c.lru.Remove(k) {
				removed++
			}
		}
	}
	return removed
}

func (c *LRUCache) Clear() {
	c.lru.Purge()
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}
