// Gilro - POI Route Recommendation and Navigation Narration for Busan
// Copyright 2026 Jiho P. (jihop-dev)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jihop-dev/gilro

package cache

import (
	"testing"
	"time"

	"github.com/jihop-dev/gilro/internal/models"
)

func TestLegCacheGetSet(t *testing.T) {
	c := NewLegCache(time.Minute)
	defer c.Stop()

	key := Key(
		models.GeoPoint{Lat: 35.1151, Lng: 129.0403},
		models.GeoPoint{Lat: 35.1587, Lng: 129.1604},
	)

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := models.LegCost{Distance: 1000, Duration: 600, Toll: 500}
	c.Set(key, want)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	hits, misses, _ := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = %d hits / %d misses, want 1/1", hits, misses)
	}
}

func TestLegCacheExpiration(t *testing.T) {
	c := NewLegCache(10 * time.Millisecond)
	defer c.Stop()

	key := Key(models.GeoPoint{Lat: 35.1, Lng: 129.0}, models.GeoPoint{Lat: 35.2, Lng: 129.1})
	c.Set(key, models.LegCost{Distance: 1})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", c.Len())
	}
	_, _, evictions := c.Stats()
	if evictions != 1 {
		t.Errorf("evictions = %d, want 1", evictions)
	}
}

func TestKeyDistinguishesDirection(t *testing.T) {
	a := models.GeoPoint{Lat: 35.1151, Lng: 129.0403}
	b := models.GeoPoint{Lat: 35.1587, Lng: 129.1604}

	if Key(a, b) == Key(b, a) {
		t.Error("keys for opposite directions must differ")
	}
	if Key(a, b) != Key(a, b) {
		t.Error("key generation must be deterministic")
	}
}

func TestLegCacheConcurrentAccess(t *testing.T) {
	c := NewLegCache(time.Minute)
	defer c.Stop()

	done := make(chan struct{})
	key := Key(models.GeoPoint{Lat: 35.1, Lng: 129.0}, models.GeoPoint{Lat: 35.2, Lng: 129.1})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				c.Set(key, models.LegCost{Distance: float64(j)})
				c.Get(key)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
