// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
)

func TestSetGet(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Set("network_1964_all", "snapshot")

	got, ok := c.Get("network_1964_all")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "snapshot" {
		t.Errorf("got %v", got)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.SetWithTTL("ephemeral", 1, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("ephemeral"); ok {
		t.Error("expected expired entry to miss")
	}

	stats := c.GetStats()
	if stats.Evictions == 0 {
		t.Error("expected eviction recorded for expired entry")
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Set("years", []int{1961, 1964})
	c.Delete("years")

	if _, ok := c.Get("years"); ok {
		t.Error("expected miss after delete")
	}

	// Deleting a missing key must not panic.
	c.Delete("never-set")
}

func TestDeletePrefix(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Set("network_1964_all", 1)
	c.Set("network_1964_u-bahn", 2)
	c.Set("network_1971_all", 3)

	removed := c.DeletePrefix("network_1964")
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if _, ok := c.Get("network_1964_all"); ok {
		t.Error("prefixed entry survived")
	}
	if _, ok := c.Get("network_1971_all"); !ok {
		t.Error("unrelated entry was removed")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("key-%d", i), i)
	}
	c.Clear()

	stats := c.GetStats()
	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d after Clear", stats.TotalKeys)
	}
	if _, ok := c.Get("key-0"); ok {
		t.Error("entry survived Clear")
	}
}

func TestHitRate(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	if rate := c.HitRate(); rate != 0.0 {
		t.Errorf("empty cache hit rate = %f", rate)
	}

	c.Set("k", 1)
	c.Get("k")
	c.Get("k")
	c.Get("missing")

	// 2 hits, 1 miss
	rate := c.HitRate()
	if rate < 60 || rate > 70 {
		t.Errorf("hit rate = %f, want ~66.7", rate)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			c.Set(key, n)
			c.Get(key)
			if n%10 == 0 {
				c.DeletePrefix("key-1")
			}
		}(i)
	}
	wg.Wait()
}

func TestPublishMetrics(t *testing.T) {
	t.Parallel()

	// Unique label keeps this test independent of other publishers
	// sharing the global registry.
	const label = "publish-test"

	c := New(time.Minute)
	c.Set("network_1961_all", 1)
	c.Set("network_1964_all", 2)
	c.Delete("network_1961_all")

	c.PublishMetrics(label)

	if got := testutil.ToFloat64(metrics.CacheSize.WithLabelValues(label)); got != 1 {
		t.Errorf("cache_entries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CacheEvictions.WithLabelValues(label)); got != 1 {
		t.Errorf("cache_evictions_total = %v, want 1", got)
	}

	// A second publish adds only the evictions since the first.
	c.Delete("network_1964_all")
	c.PublishMetrics(label)

	if got := testutil.ToFloat64(metrics.CacheEvictions.WithLabelValues(label)); got != 2 {
		t.Errorf("cache_evictions_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CacheSize.WithLabelValues(label)); got != 0 {
		t.Errorf("cache_entries = %v, want 0", got)
	}
}

func TestCleanupRemovesExpired(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.SetWithTTL("old", 1, -time.Second)
	c.Set("fresh", 2)

	c.cleanup()

	c.mu.RLock()
	_, oldExists := c.entries["old"]
	_, freshExists := c.entries["fresh"]
	c.mu.RUnlock()

	if oldExists {
		t.Error("expired entry survived cleanup")
	}
	if !freshExists {
		t.Error("fresh entry removed by cleanup")
	}
}
