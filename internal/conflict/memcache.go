package conflict

import (
	"context"
	"sync"
)

// memCache is the in-process fallback used when no cache is supplied to
// NewAnalyzer. It is not consulted when a RedisCache is in use; an
// unreachable Redis is treated as a cache miss instead.
type memCache struct {
	mu      sync.RWMutex
	results map[string]*Result
}

func newMemCache() *memCache {
	return &memCache{results: map[string]*Result{}}
}

func (c *memCache) Get(_ context.Context, key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[key]
	return r, ok && r != nil
}

func (c *memCache) Set(_ context.Context, key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if result == nil {
		delete(c.results, key)
		return
	}
	c.results[key] = result
}
