// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package navi

import (
	"context"
	"time"

	"github.com/jihop-dev/gilro/internal/cache"
	"github.com/jihop-dev/gilro/internal/models"
)

// CachedClient wraps an API with a TTL cache over single-leg lookups.
// Multi-route requests bypass the cache; their option surface makes
// keys unstable and they are not issued in bulk.
type CachedClient struct {
	api   API
	cache *cache.LegCache
}

// NewCachedClient wraps api with a leg-cost cache. A non-positive ttl
// defaults to five minutes.
func NewCachedClient(api API, ttl time.Duration) *CachedClient {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedClient{
		api:   api,
		cache: cache.NewLegCache(ttl),
	}
}

// GetRoute implements API with caching.
func (c *CachedClient) GetRoute(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error) {
	key := cache.Key(origin, destination)
	if cost, ok := c.cache.Get(key); ok {
		return cost, nil
	}

	cost, err := c.api.GetRoute(ctx, origin, destination)
	if err != nil {
		return models.LegCost{}, err
	}
	c.cache.Set(key, cost)
	return cost, nil
}

// GetMultiRoutes implements API, passing through uncached.
func (c *CachedClient) GetMultiRoutes(ctx context.Context, req MultiRouteRequest) (map[string]interface{}, error) {
	return c.api.GetMultiRoutes(ctx, req)
}

// ResolveLeg resolves a single leg through the cache.
func (c *CachedClient) ResolveLeg(ctx context.Context, origin, destination models.GeoPoint) (models.LegCost, error) {
	return c.GetRoute(ctx, origin, destination)
}

// Close stops the cache's background sweeper.
func (c *CachedClient) Close() {
	c.cache.Stop()
}
