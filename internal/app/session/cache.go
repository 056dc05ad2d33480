package session

import (
	"sync"
	"time"

	"growshare/internal/app/dto"
)

// DefaultTTL is how long a fetched month stays servable. Past it the entry is
// treated as absent, never returned.
const DefaultTTL = 5 * time.Minute

type monthKey struct {
	PlotID string
	Year   int
	Month  time.Month
}

type cacheEntry struct {
	data      dto.Availability
	fetchedAt time.Time
}

// Cache holds per-plot, per-month availability views for a single viewing
// session. It is owned explicitly by the session, starts cold on every page
// load, and is never shared across users or persisted.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[monthKey]cacheEntry
}

// NewCache builds an empty cache. A zero ttl falls back to DefaultTTL; a nil
// clock falls back to time.Now (tests inject their own).
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[monthKey]cacheEntry),
	}
}

// Get returns the cached view for a month, or a miss when absent or expired.
// Expired entries are evicted on the spot.
func (c *Cache) Get(plotID string, year int, month time.Month) (dto.Availability, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := monthKey{PlotID: plotID, Year: year, Month: month}
	entry, ok := c.entries[key]
	if !ok {
		return dto.Availability{}, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return dto.Availability{}, false
	}
	return entry.data, true
}

func (c *Cache) Set(plotID string, year int, month time.Month, data dto.Availability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[monthKey{PlotID: plotID, Year: year, Month: month}] = cacheEntry{
		data:      data,
		fetchedAt: c.now(),
	}
}

// InvalidateAll drops every entry. Mutations call this instead of surgically
// evicting affected months: a full clear is simpler and cannot leave a stale
// month behind.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[monthKey]cacheEntry)
}
