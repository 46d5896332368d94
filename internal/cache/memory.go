package cache

import (
	"encoding/json"
	"sync"
	"time"
)

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// Memory implements Cache with an in-process map. Values go through the
// same JSON round trip as the redis implementation so both behave alike.
type Memory struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem)}
}

// Get reads and unmarshals a cached value, treating expired items as absent.
func (c *Memory) Get(key string, result any) (bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(item.data, result); err != nil {
		return false, err
	}
	return true, nil
}

// Set marshals and stores a value with a TTL. Zero expiration means no expiry.
func (c *Memory) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	item := memoryItem{data: data}
	if expiration > 0 {
		item.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.items[key] = item
	c.mu.Unlock()
	return nil
}

// Invalidate removes a key.
func (c *Memory) Invalidate(key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}
