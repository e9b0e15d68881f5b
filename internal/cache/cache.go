package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache keeps fetched sheet snapshots for a short while. A zero duration
// disables it so every run re-reads the sheet.
type Cache struct {
	cache    *gocache.Cache
	duration time.Duration
}

func New(duration time.Duration) *Cache {
	if duration < 0 {
		duration = 0
	}

	cleanup := duration * 2
	if cleanup == 0 {
		cleanup = time.Minute
	}

	return &Cache{
		cache:    gocache.New(duration, cleanup),
		duration: duration,
	}
}

// Enabled reports whether snapshots are kept at all
func (c *Cache) Enabled() bool {
	return c != nil && c.duration > 0
}

func (c *Cache) SetTable(source string, rows [][]string) {
	if !c.Enabled() {
		return
	}
	c.cache.Set("table:"+source, rows, c.duration)
}

// GetTable returns the snapshot for source. Callers must not modify it.
func (c *Cache) GetTable(source string) ([][]string, bool) {
	if !c.Enabled() {
		return nil, false
	}
	if rows, found := c.cache.Get("table:" + source); found {
		return rows.([][]string), true
	}
	return nil, false
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}

func (c *Cache) Flush() {
	if c == nil {
		return
	}
	c.cache.Flush()
}
