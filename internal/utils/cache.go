package utils

import (
	"os"
	"sync"
	"time"
)

// CacheItem is a cached value with the file state it was derived from
type CacheItem[T any] struct {
	Value   T
	ModTime time.Time
	Size    int64
}

// FileCache caches values derived from files. An entry is valid while the
// file's modification time and size are unchanged.
type FileCache[V any] struct {
	items  map[string]*CacheItem[V]
	mutex  sync.RWMutex
	hits   int
	misses int
}

// NewFileCache creates an empty file cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{
		items: make(map[string]*CacheItem[V]),
	}
}

// Get returns the cached value for path when the file is unchanged. A
// stale entry is evicted.
func (c *FileCache[V]) Get(path string) (V, bool) {
	var zero V

	c.mutex.RLock()
	item, exists := c.items[path]
	c.mutex.RUnlock()

	if exists {
		if stat, err := os.Stat(path); err == nil &&
			stat.ModTime().Equal(item.ModTime) && stat.Size() == item.Size {
			c.mutex.Lock()
			c.hits++
			c.mutex.Unlock()
			return item.Value, true
		}
	}

	c.mutex.Lock()
	if exists {
		delete(c.items, path)
	}
	c.misses++
	c.mutex.Unlock()
	return zero, false
}

// Set stores a value together with the current state of the file
func (c *FileCache[V]) Set(path string, value V) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[path] = &CacheItem[V]{
		Value:   value,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	}
	return nil
}

// Delete removes the entry for path
func (c *FileCache[V]) Delete(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, path)
}

// Clear removes all entries
func (c *FileCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[string]*CacheItem[V])
}

// Size returns the number of entries
func (c *FileCache[V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// GetStats returns cache statistics
func (c *FileCache[V]) GetStats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return CacheStats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}
