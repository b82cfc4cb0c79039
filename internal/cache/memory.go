package cache

import (
	"context"
	"sync"
)

// MemoryBlockedSetCache is a process-local BlockedSetCache.
type MemoryBlockedSetCache struct {
	mu  sync.RWMutex
	ids []int64
	hit bool
}

// NewMemoryBlockedSetCache creates an empty MemoryBlockedSetCache.
func NewMemoryBlockedSetCache() *MemoryBlockedSetCache {
	return &MemoryBlockedSetCache{}
}

func (c *MemoryBlockedSetCache) Get(context.Context) ([]int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hit {
		return nil, false, nil
	}
	return append([]int64{}, c.ids...), true, nil
}

func (c *MemoryBlockedSetCache) Set(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = append([]int64{}, ids...)
	c.hit = true
	return nil
}

func (c *MemoryBlockedSetCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = nil
	c.hit = false
	return nil
}
