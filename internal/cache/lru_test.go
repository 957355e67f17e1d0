package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes most recent
		t.Fatalf("expected hit for a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("unexpected a: %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	c.Set("other", "v")
	now = now.Add(2 * time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("expected 1 cleaned, got %d", n)
	}
	hits, misses := c.Stats()
	if hits != 0 || misses != 1 {
		t.Fatalf("unexpected stats hits=%d misses=%d", hits, misses)
	}
}

func TestLRUPurgeAndDelete(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Fatalf("maxSize below one is clamped to one, got size %d", c.Size())
	}
	c.Delete("b")
	if c.Size() != 0 {
		t.Fatalf("expected empty after delete")
	}
	c.Set("a", 1)
	c.Purge()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after purge")
	}
}

func TestManagerCleanNowAndStop(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(time.Hour)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(time.Hour)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	m.Stop()
	m.Stop()
}
