// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

// Package cache provides a thread-safe in-memory TTL cache for leg
// costs, keyed by origin/destination pairs. Road conditions change
// slowly relative to a browsing session, so short-lived caching cuts
// most duplicate upstream directions calls when the same corridor is
// scored repeatedly.
package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/jihop-dev/gilro/internal/models"
)

// defaultCleanupInterval controls how often expired entries are swept.
const defaultCleanupInterval = 5 * time.Minute

type entry struct {
	cost      models.LegCost
	expiresAt time.Time
}

// LegCache is a thread-safe TTL cache for resolved leg costs.
type LegCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64

	stop chan struct{}
	once sync.Once
}

// NewLegCache creates a cache whose entries expire after ttl. A
// background goroutine sweeps expired entries until Stop is called.
func NewLegCache(ttl time.Duration) *LegCache {
	c := &LegCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Key builds a cache key from an origin/destination pair. Coordinates
// are rounded through FormatFloat so the same pair always hashes the
// same regardless of how it was computed.
func Key(origin, destination models.GeoPoint) string {
	return formatCoord(origin.Lat) + "," + formatCoord(origin.Lng) +
		"|" + formatCoord(destination.Lat) + "," + formatCoord(destination.Lng)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Get retrieves a cached leg cost. Expired entries count as misses and
// are removed.
func (c *LegCache) Get(key string) (models.LegCost, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.recordMiss()
		return models.LegCost{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordEviction()
		c.recordMiss()
		return models.LegCost{}, false
	}

	c.recordHit()
	return e.cost, true
}

// Set stores a leg cost under key with the configured TTL.
func (c *LegCache) Set(key string, cost models.LegCost) {
	c.mu.Lock()
	c.entries[key] = entry{cost: cost, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Len returns the number of entries, including any not yet swept.
func (c *LegCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports hit, miss, and eviction counts.
func (c *LegCache) Stats() (hits, misses, evictions int64) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.hits, c.misses, c.evictions
}

// Stop terminates the background cleanup goroutine.
func (c *LegCache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *LegCache) cleanupLoop() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *LegCache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	var evicted int64
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.mu.Unlock()

	if evicted > 0 {
		c.statsMu.Lock()
		c.evictions += evicted
		c.statsMu.Unlock()
	}
}

func (c *LegCache) recordHit() {
	c.statsMu.Lock()
	c.hits++
	c.statsMu.Unlock()
}

func (c *LegCache) recordMiss() {
	c.statsMu.Lock()
	c.misses++
	c.statsMu.Unlock()
}

func (c *LegCache) recordEviction() {
	c.statsMu.Lock()
	c.evictions++
	c.statsMu.Unlock()
}
