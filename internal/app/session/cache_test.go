package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growshare/internal/app/dto"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestCacheHitWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCache(DefaultTTL, clock.Now)

	view := dto.Availability{PlotID: "plot-1"}
	cache.Set("plot-1", 2026, time.June, view)

	clock.Advance(4 * time.Minute)
	got, ok := cache.Get("plot-1", 2026, time.June)
	require.True(t, ok)
	assert.Equal(t, "plot-1", got.PlotID)
}

func TestCacheExpiryIsAMiss(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewCache(DefaultTTL, clock.Now)

	cache.Set("plot-1", 2026, time.June, dto.Availability{PlotID: "plot-1"})

	clock.Advance(5 * time.Minute)
	_, ok := cache.Get("plot-1", 2026, time.June)
	assert.False(t, ok, "an expired entry must never be served")

	// Expired entries are evicted, so a fresh Set starts a new TTL window.
	cache.Set("plot-1", 2026, time.June, dto.Availability{PlotID: "plot-1"})
	_, ok = cache.Get("plot-1", 2026, time.June)
	assert.True(t, ok)
}

func TestCacheKeysArePerPlotAndMonth(t *testing.T) {
	cache := NewCache(0, nil)
	cache.Set("plot-1", 2026, time.June, dto.Availability{PlotID: "plot-1"})

	_, ok := cache.Get("plot-2", 2026, time.June)
	assert.False(t, ok)
	_, ok = cache.Get("plot-1", 2026, time.July)
	assert.False(t, ok)
	_, ok = cache.Get("plot-1", 2027, time.June)
	assert.False(t, ok)
}

func TestInvalidateAllDropsEverything(t *testing.T) {
	cache := NewCache(0, nil)
	cache.Set("plot-1", 2026, time.June, dto.Availability{PlotID: "plot-1"})
	cache.Set("plot-1", 2026, time.July, dto.Availability{PlotID: "plot-1"})

	cache.InvalidateAll()

	_, ok := cache.Get("plot-1", 2026, time.June)
	assert.False(t, ok)
	_, ok = cache.Get("plot-1", 2026, time.July)
	assert.False(t, ok)
}
