package cache

import (
	"container/list"
	"sync"
	"time"

	"year-journal/internal/models"
)

const MaxCacheSize = 32

type cacheEntry struct {
	key       string
	entries   []models.DayEntry
	timestamp time.Time
}

// Cache is a small LRU of per-year entry lists, keyed "year:<YYYY>".
// Mutations clear it wholesale; with one list per viewed year the working
// set never gets big enough for targeted invalidation to matter.
type Cache struct {
	mu      sync.RWMutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
}

func New() *Cache {
	return &Cache{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: MaxCacheSize,
	}
}

func (c *Cache) Get(key string) ([]models.DayEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		return entry.entries, true
	}
	return nil, false
}

func (c *Cache) Set(key string, entries []models.DayEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.entries = entries
		entry.timestamp = time.Now()
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			entry := oldest.Value.(*cacheEntry)
			delete(c.items, entry.key)
			c.order.Remove(oldest)
		}
	}

	entry := &cacheEntry{
		key:       key,
		entries:   entries,
		timestamp: time.Now(),
	}
	elem := c.order.PushFront(entry)
	c.items[key] = elem
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		delete(c.items, key)
		c.order.Remove(elem)
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order = list.New()
}
