// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCache_GetAdd(t *testing.T) {
	c := NewLRUCache[int64, []float32](4, 0)

	if _, ok := c.Get(1); ok {
		t.Fatal("empty cache should miss")
	}

	c.Add(1, []float32{0.5, 0.25})
	got, ok := c.Get(1)
	if !ok {
		t.Fatal("expected hit after Add")
	}
	if len(got) != 2 || got[0] != 0.5 || got[1] != 0.25 {
		t.Errorf("Get(1) = %v, want [0.5 0.25]", got)
	}

	c.Add(1, []float32{1})
	if got, _ := c.Get(1); len(got) != 1 {
		t.Errorf("Add should overwrite, got %v", got)
	}

	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (2, 1)", hits, misses)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[string, int](3, 0)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// touch "a" so "b" becomes the least recently used
	c.Get("a")
	c.Add("d", 4)

	if c.Contains("b") {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !c.Contains(k) {
			t.Errorf("%s should still be cached", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	c := NewLRUCache[string, int](10, 20*time.Millisecond)
	c.Add("k", 1)
	if !c.Contains("k") {
		t.Fatal("fresh entry should be present")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be collected on Get, Len() = %d", c.Len())
	}
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	c := NewLRUCache[int, int](10, 0)
	c.Add(1, 1)
	c.Add(2, 2)

	if !c.Remove(1) {
		t.Error("Remove(1) should report true")
	}
	if c.Remove(1) {
		t.Error("second Remove(1) should report false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	hits, misses := c.Stats()
	if hits != 0 || misses != 0 {
		t.Errorf("Stats() after Clear = (%d, %d), want (0, 0)", hits, misses)
	}
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := NewLRUCache[string, int](50, 0)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%100)
				c.Add(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d, exceeds capacity 50", c.Len())
	}
}
