package fingerprint

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOUICache(t *testing.T) {
	cache := NewOUICache(3)

	cache.Set("00:00:00", "Vendor1")
	cache.Set("11:11:11", "Vendor2")
	cache.Set("22:22:22", "Vendor3")

	val, ok := cache.Get("00:00:00")
	assert.True(t, ok)
	assert.Equal(t, "Vendor1", val)

	// After Get("00:00:00"), 11:11:11 is the least recently used
	cache.Set("33:33:33", "Vendor4")

	_, ok = cache.Get("11:11:11")
	assert.False(t, ok, "Expected 11:11:11 to be evicted")

	assert.Equal(t, 3, cache.Len())

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestOUICacheUpdate(t *testing.T) {
	cache := NewOUICache(2)
	cache.Set("00:00:00", "Old")
	cache.Set("00:00:00", "New")

	val, _ := cache.Get("00:00:00")
	assert.Equal(t, "New", val)
	assert.Equal(t, 1, cache.Len())
}

func TestOUICacheConcurrentGet(t *testing.T) {
	cache := NewOUICache(16)
	cache.Set("AA:BB:CC", "Acme")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Get("AA:BB:CC")
				cache.Set("DD:EE:FF", "Other")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), cache.Stats().Hits)
}
